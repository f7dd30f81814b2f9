package rangesync

// bound is a half-open-range delimiter (timestamp, prefix), used only
// internally to describe where one frame tuple's range ends and the next
// one's begins. It is not itself an item: its prefix may be shorter than
// idSize, including empty.
//
// A bound "covers" every item strictly less than it under compareItemBound,
// which treats a short prefix as the smallest possible continuation - the
// same rule bytes.Compare already applies to a true prefix relationship, so
// no explicit padding is needed anywhere a bound is compared against an
// item or another bound.
type bound struct {
	timestamp uint64
	prefix    []byte
}

// zeroBound is the lower sentinel (0, empty), the start of every reconciled
// range.
var zeroBound = bound{timestamp: 0}

// infBound is the upper sentinel (2^64-1, empty), "+infinity".
var infBound = bound{timestamp: MaxTimestamp}

// compareBounds orders two bounds the same way compareItemBound orders an item
// against a bound, treating each bound's prefix as its "id".
func compareBounds(a, b bound) int {
	if a.timestamp != b.timestamp {
		if a.timestamp < b.timestamp {
			return -1
		}
		return 1
	}
	n := len(a.prefix)
	if len(b.prefix) < n {
		n = len(b.prefix)
	}
	for i := 0; i < n; i++ {
		if a.prefix[i] != b.prefix[i] {
			if a.prefix[i] < b.prefix[i] {
				return -1
			}
			return 1
		}
	}
	return len(a.prefix) - len(b.prefix)
}

// minimalBound returns the shortest bound that lies strictly between two
// adjacent, distinct items prev < curr.
func minimalBound(prev, curr item) bound {
	if prev.timestamp != curr.timestamp {
		return bound{timestamp: curr.timestamp}
	}
	k := 0
	for k < len(curr.id) && k < len(prev.id) && curr.id[k] == prev.id[k] {
		k++
	}
	prefix := make([]byte, k+1)
	copy(prefix, curr.id[:k+1])
	return bound{timestamp: curr.timestamp, prefix: prefix}
}
