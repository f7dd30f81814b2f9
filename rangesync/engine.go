package rangesync

// pendingOutput is a queued (startBound, endBound, payload) tuple awaiting
// inclusion in the next outgoing frame.
type pendingOutput struct {
	start, end bound
	payload    []byte
}

// splitRange emits either a single IdList covering the whole range, or
// numBuckets Fingerprint messages, one per contiguous bucket of
// items[lo:hi].
func splitRange(items []item, lo, hi int, lowerBound, upperBound bound, idSize int) []pendingOutput {
	n := hi - lo
	if n < 2*numBuckets {
		payload := appendVarint(nil, modeIDList)
		payload = appendVarint(payload, uint64(n))
		for i := lo; i < hi; i++ {
			payload = append(payload, items[i].id[:idSize]...)
		}
		return []pendingOutput{{start: lowerBound, end: upperBound, payload: payload}}
	}

	itemsPerBucket := n / numBuckets
	bucketsWithExtra := n % numBuckets
	outputs := make([]pendingOutput, 0, numBuckets)
	curr := lo
	prevBound := lowerBound
	for i := 0; i < numBuckets; i++ {
		bucketEnd := curr + itemsPerBucket
		if i < bucketsWithExtra {
			bucketEnd++
		}
		fp := aggregateFingerprint(items, curr, bucketEnd)

		payload := appendVarint(nil, modeFingerprint)
		payload = append(payload, fp.bytes(idSize)...)

		var end bound
		if i == numBuckets-1 {
			end = upperBound
		} else {
			end = minimalBound(items[bucketEnd-1], items[bucketEnd])
		}
		outputs = append(outputs, pendingOutput{start: prevBound, end: end, payload: payload})

		curr = bucketEnd
		prevBound = end
	}
	return outputs
}
