package rdt

// sendEntry is one queued outbound payload awaiting acknowledgment, along
// with the sequence number just past its last byte once it has been
// stamped by a transmit pass. segmentEnd is stamped (and re-stamped,
// identically, since entry order and lengths are stable between ACKs) on
// every transmit pass - see (*sendBuffer).Walk.
type sendEntry struct {
	payload    []byte
	length     Size
	segmentEnd Value
}

// sendBuffer is the ordered queue of unacknowledged outbound payloads. It
// owns copies of every payload it holds - no aliasing with the caller's
// input-read buffer.
type sendBuffer struct {
	entries []sendEntry
}

// Enqueue copies payload into a new owned queue entry. Callers must not
// enqueue empty payloads.
func (sb *sendBuffer) Enqueue(payload []byte) {
	owned := make([]byte, len(payload))
	copy(owned, payload)
	sb.entries = append(sb.entries, sendEntry{payload: owned, length: Size(len(owned))})
}

// Len returns the number of queued entries.
func (sb *sendBuffer) Len() int { return len(sb.entries) }

// Empty reports whether the queue has no entries.
func (sb *sendBuffer) Empty() bool { return len(sb.entries) == 0 }

// TotalLength returns the sum of all queued entry lengths.
func (sb *sendBuffer) TotalLength() Size {
	var total Size
	for _, e := range sb.entries {
		total += e.length
	}
	return total
}

// Walk is the transmit pass: starting from seqno (the Go-Back-N replay
// anchor), it stamps each entry's segmentEnd in order and invokes fn for
// every entry whose length still fits within window bytes of the entries
// stamped so far. It stops at the first entry that would exceed window,
// leaving the remainder unstamped for a later pass. It returns the next
// sequence number after the last entry handed to fn.
func (sb *sendBuffer) Walk(seqno Value, window Size, fn func(seq Value, e *sendEntry)) Value {
	next := seqno
	var used Size
	for i := range sb.entries {
		e := &sb.entries[i]
		if e.length+used > window {
			break
		}
		e.segmentEnd = Add(next, e.length)
		fn(next, e)
		next = e.segmentEnd
		used += e.length
	}
	return next
}

// RemoveThrough is the cumulative-ACK walk: removes every entry from the
// front whose segmentEnd is covered by ack (ack >=
// segmentEnd), returning the total bytes freed and the new left edge of
// the window (the segmentEnd of the last entry removed, or the unchanged
// left edge if nothing was removed).
func (sb *sendBuffer) RemoveThrough(ack Value, leftEdge Value) (removedLen Size, newLeftEdge Value) {
	newLeftEdge = leftEdge
	i := 0
	for i < len(sb.entries) {
		e := sb.entries[i]
		if !e.segmentEnd.LessThanEq(ack) {
			break
		}
		removedLen += e.length
		newLeftEdge = e.segmentEnd
		i++
	}
	if i > 0 {
		sb.entries = sb.entries[i:]
	}
	return removedLen, newLeftEdge
}
