package rangesync

import (
	"bytes"
	"encoding/hex"
)

const (
	// MinIDSize is the smallest id length a Reconciler may be constructed
	// with.
	MinIDSize = 8
	// MaxIDSize is the largest id length a Reconciler may be constructed
	// with, and the size of the zero-padded buffer XOR fingerprints are
	// accumulated in.
	MaxIDSize = 32
)

// MaxTimestamp is the sentinel timestamp value used for the "+infinity"
// bound. It never appears as an item's own timestamp in practice, but
// nothing in this package forbids it.
const MaxTimestamp uint64 = 1<<64 - 1

// ID is a variable-length item identifier, between MinIDSize and MaxIDSize
// bytes for any item actually added to a Reconciler. Bound prefixes are
// plain byte slices that may be shorter, including empty.
type ID []byte

// String renders the id as lowercase hex, matching the harness wire format.
func (id ID) String() string {
	return hex.EncodeToString(id)
}

// Clone returns a copy of id that does not alias the original backing array.
func (id ID) Clone() ID {
	c := make(ID, len(id))
	copy(c, id)
	return c
}

// Compare orders two ids lexicographically by byte value. A shorter id that
// is a strict prefix of a longer one compares less than the longer one,
// matching the rule bound prefixes use when compared against a full id.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id, other)
}

// item is a single (timestamp, id) record held by a sealed Reconciler.
type item struct {
	timestamp uint64
	id        ID
}

// compareItems implements the item store's total order: ascending timestamp,
// then lexicographic id.
func compareItems(a, b item) int {
	if a.timestamp != b.timestamp {
		if a.timestamp < b.timestamp {
			return -1
		}
		return 1
	}
	return a.id.Compare(b.id)
}

// compareItemBound compares an item against a bound under the same total
// order, extended so a bound with a shorter prefix acts as the smallest
// possible continuation (see the bound type's doc comment).
func compareItemBound(it item, b bound) int {
	if it.timestamp != b.timestamp {
		if it.timestamp < b.timestamp {
			return -1
		}
		return 1
	}
	return bytes.Compare(it.id, b.prefix)
}
