package rangesync

import (
	"slices"
	"sort"

	"go.uber.org/zap"
)

// Option configures a Reconciler at construction time.
type Option func(*Reconciler)

// WithLogger attaches a zap logger used for debug-level tracing. The only
// entry written is one per Initiate call (item count and frame size limit);
// rounds, bucket splits and parse errors are not logged. This exists purely
// as an ambient diagnostic hook.
func WithLogger(log *zap.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// Reconciler holds one party's state in a range-based set reconciliation
// session: its item collection, whether it has sealed and/or initiated, and
// the FIFO of pending outputs awaiting the next outgoing frame.
type Reconciler struct {
	idSize         int
	items          []item
	sealed         bool
	isInitiator    bool
	frameSizeLimit uint64
	pending        []pendingOutput
	log            *zap.Logger
}

// New constructs a Reconciler for ids of exactly idSize bytes, which must be
// in [MinIDSize, MaxIDSize].
func New(idSize int, opts ...Option) (*Reconciler, error) {
	if idSize < MinIDSize || idSize > MaxIDSize {
		return nil, ErrBadIDSize
	}
	r := &Reconciler{idSize: idSize, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.frameSizeLimit != 0 && r.frameSizeLimit < frameSizeLimitFloor {
		return nil, ErrFrameSizeTooSmall
	}
	return r, nil
}

// IDSize returns the id-size parameter fixed at construction.
func (r *Reconciler) IDSize() int { return r.idSize }

// Sealed reports whether Seal has been called.
func (r *Reconciler) Sealed() bool { return r.sealed }

// IsInitiator reports whether Initiate has been called, fixing this
// Reconciler's role for the rest of its lifetime.
func (r *Reconciler) IsInitiator() bool { return r.isInitiator }

// AddItem appends a (timestamp, id) record. It is only legal before Seal.
func (r *Reconciler) AddItem(timestamp uint64, id []byte) error {
	if r.sealed {
		return ErrAlreadySealed
	}
	if len(id) != r.idSize {
		return ErrBadIDSize
	}
	r.items = append(r.items, item{timestamp: timestamp, id: ID(id).Clone()})
	return nil
}

// Seal sorts the accumulated items and fixes them for the rest of the
// Reconciler's lifetime. Items typically arrive in approximately descending
// timestamp order, so reversing before sorting gives the adaptive sort a
// near-sorted input to work with.
func (r *Reconciler) Seal() error {
	if r.sealed {
		return ErrAlreadySealed
	}
	slices.Reverse(r.items)
	slices.SortFunc(r.items, compareItems)
	r.sealed = true
	return nil
}

// upperBoundFrom returns the first index in items[lo:] whose item compares
// strictly greater than b, i.e. std::upper_bound(lo, end, b) in the
// reference implementation.
func (r *Reconciler) upperBoundFrom(lo int, b bound) int {
	n := len(r.items)
	off := sort.Search(n-lo, func(i int) bool {
		return compareItemBound(r.items[lo+i], b) > 0
	})
	return lo + off
}
