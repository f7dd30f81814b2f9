package rangesync

import (
	"bytes"

	"go.uber.org/zap"
)

// WithFrameSizeLimit bounds every frame this Reconciler builds via
// buildOutput to at most n bytes (n must be 0, meaning unbounded, or >=
// 1024). The initiator normally gets its limit from the frameSizeLimit
// argument to Initiate, which replaces any value set by this option; this
// option lets a responder (whose Reconcile never takes such an argument) be
// bounded the same way, for exchanges where both sides of a limited session
// need a cap.
func WithFrameSizeLimit(n uint64) Option {
	return func(r *Reconciler) { r.frameSizeLimit = n }
}

// Initiate seals having already happened, marks this Reconciler as the
// initiator, queues the top-level range split and returns the first
// outgoing frame. frameSizeLimit is 0 (unbounded) or >= 1024 bytes.
func (r *Reconciler) Initiate(frameSizeLimit uint64) ([]byte, error) {
	if !r.sealed {
		return nil, ErrNotSealed
	}
	if frameSizeLimit != 0 && frameSizeLimit < frameSizeLimitFloor {
		return nil, ErrFrameSizeTooSmall
	}
	r.isInitiator = true
	r.frameSizeLimit = frameSizeLimit

	outs := splitRange(r.items, 0, len(r.items), zeroBound, infBound, r.idSize)
	r.pending = append(r.pending, outs...)

	r.log.Debug("initiate", zap.Int("items", len(r.items)), zap.Uint64("frameSizeLimit", frameSizeLimit))
	return r.buildOutput(), nil
}

// Reconcile is the responder form: it parses incoming, queues any
// refinement outputs, and returns the next outgoing frame. It fails with
// ErrInitiatorMismatch if this Reconciler is the initiator.
func (r *Reconciler) Reconcile(incoming []byte) ([]byte, error) {
	if r.isInitiator {
		return nil, ErrInitiatorMismatch
	}
	if !r.sealed {
		return nil, ErrNotSealed
	}
	if _, _, err := r.reconcileAux(incoming); err != nil {
		return nil, err
	}
	return r.buildOutput(), nil
}

// ReconcileInitiator is the initiator form: besides the next outgoing
// frame, it returns the ids discovered to be local-only (have) or
// remote-only (need) while processing incoming. It fails with
// ErrInitiatorMismatch if this Reconciler is not the initiator.
func (r *Reconciler) ReconcileInitiator(incoming []byte) (have, need []ID, outgoing []byte, err error) {
	if !r.isInitiator {
		return nil, nil, nil, ErrInitiatorMismatch
	}
	if !r.sealed {
		return nil, nil, nil, ErrNotSealed
	}
	have, need, err = r.reconcileAux(incoming)
	if err != nil {
		return nil, nil, nil, err
	}
	return have, need, r.buildOutput(), nil
}

// theirElem tracks one id decoded from an incoming IdList message: its
// position in the list (needed to build the bitfield response) and whether
// a matching local item was found while scanning our own range.
type theirElem struct {
	offset int
	onBoth bool
}

// reconcileAux walks every (bound, mode, body) tuple of incoming, comparing
// each described range against the local item store and queuing whatever
// refinements are needed.
func (r *Reconciler) reconcileAux(incoming []byte) (have, need []ID, err error) {
	if !r.sealed {
		return nil, nil, ErrNotSealed
	}

	prevBound := zeroBound
	prevIndex := 0
	dec := &timestampDecoder{}
	var outputs []pendingOutput

	data := incoming
	for len(data) > 0 {
		var currBound bound
		currBound, data, err = decodeBound(data, dec)
		if err != nil {
			return nil, nil, err
		}
		var modeVal uint64
		modeVal, data, err = decodeVarint(data)
		if err != nil {
			return nil, nil, err
		}

		lower := prevIndex
		upper := r.upperBoundFrom(prevIndex, currBound)

		switch modeVal {
		case modeSkip:
			// nothing to do

		case modeFingerprint:
			var theirFP []byte
			theirFP, data, err = takeBytes(data, uint64(r.idSize))
			if err != nil {
				return nil, nil, err
			}
			ourFP := aggregateFingerprint(r.items, lower, upper)
			if !bytes.Equal(theirFP, ourFP.bytes(r.idSize)) {
				outputs = append(outputs, splitRange(r.items, lower, upper, prevBound, currBound, r.idSize)...)
			}

		case modeIDList:
			var numIDs uint64
			numIDs, data, err = decodeVarint(data)
			if err != nil {
				return nil, nil, err
			}
			theirElems := make(map[string]*theirElem, numIDs)
			for i := uint64(0); i < numIDs; i++ {
				var idBytes []byte
				idBytes, data, err = takeBytes(data, uint64(r.idSize))
				if err != nil {
					return nil, nil, err
				}
				theirElems[string(idBytes)] = &theirElem{offset: int(i)}
			}

			var responseHaveIDs []ID
			var responseNeedIdx []int
			for i := lower; i < upper; i++ {
				it := r.items[i]
				if e, ok := theirElems[string(it.id)]; ok {
					e.onBoth = true
				} else if r.isInitiator {
					have = append(have, it.id.Clone())
				} else {
					responseHaveIDs = append(responseHaveIDs, it.id)
				}
			}
			for k, e := range theirElems {
				if e.onBoth {
					continue
				}
				if r.isInitiator {
					need = append(need, ID(k).Clone())
				} else {
					responseNeedIdx = append(responseNeedIdx, e.offset)
				}
			}

			if !r.isInitiator {
				payload := appendVarint(nil, modeIDListResponse)
				payload = appendVarint(payload, uint64(len(responseHaveIDs)))
				for _, id := range responseHaveIDs {
					payload = append(payload, id...)
				}
				bf := encodeBitfield(responseNeedIdx)
				payload = appendVarint(payload, uint64(len(bf)))
				payload = append(payload, bf...)
				outputs = append(outputs, pendingOutput{start: prevBound, end: currBound, payload: payload})
			}

		case modeIDListResponse:
			if !r.isInitiator {
				return nil, nil, ErrUnexpectedIDListResponse
			}
			var numIDs uint64
			numIDs, data, err = decodeVarint(data)
			if err != nil {
				return nil, nil, err
			}
			for i := uint64(0); i < numIDs; i++ {
				var idBytes []byte
				idBytes, data, err = takeBytes(data, uint64(r.idSize))
				if err != nil {
					return nil, nil, err
				}
				need = append(need, ID(idBytes).Clone())
			}
			var bfLen uint64
			bfLen, data, err = decodeVarint(data)
			if err != nil {
				return nil, nil, err
			}
			var bf []byte
			bf, data, err = takeBytes(data, bfLen)
			if err != nil {
				return nil, nil, err
			}
			for j := 0; lower+j < upper; j++ {
				if bitfieldLookup(bf, j) {
					have = append(have, r.items[lower+j].id.Clone())
				}
			}

		default:
			return nil, nil, ErrUnexpectedMode
		}

		prevIndex = upper
		prevBound = currBound
	}

	// New outputs are produced in left-to-right range order; concatenating
	// them ahead of whatever is already pending keeps pending's startBound
	// non-decreasing.
	r.pending = append(outputs, r.pending...)
	return have, need, nil
}

// buildOutput assembles the next outgoing frame from the front of
// pendingOutputs, stopping at the first out-of-order entry (the convergence
// sentinel) or once frameSizeLimit would be exceeded.
func (r *Reconciler) buildOutput() []byte {
	var output []byte
	curr := zeroBound
	enc := &timestampEncoder{}

	for len(r.pending) > 0 {
		p := r.pending[0]
		if compareBounds(p.start, curr) < 0 {
			break
		}

		var piece []byte
		if compareBounds(curr, p.start) != 0 {
			piece = encodeBound(piece, p.start, enc)
			piece = appendVarint(piece, modeSkip)
		}
		piece = encodeBound(piece, p.end, enc)
		piece = append(piece, p.payload...)

		if r.frameSizeLimit > 0 && uint64(len(output)+len(piece)) > r.frameSizeLimit {
			break
		}
		output = append(output, piece...)
		r.pending = r.pending[1:]
		curr = p.end
	}

	return output
}
