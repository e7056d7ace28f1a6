package rdt

// recvEntry is one accepted in-order payload awaiting drain to the output
// stream. endOfStream marks the zero-length EOF marker emitted on the
// final drain triggered by a peer FIN.
type recvEntry struct {
	payload       []byte
	bytesDelivered int
	endOfStream   bool
}

func (e *recvEntry) bytesRemaining() int { return len(e.payload) - e.bytesDelivered }

// recvBuffer is the ordered, strongly typed queue of accepted in-order
// payloads awaiting drain to the output stream.
type recvBuffer struct {
	entries []recvEntry
}

// Append adds a newly accepted in-order payload to the back of the queue.
// The bytes are copied: no aliasing with the datagram adapter's receive
// buffer survives past the call that produced them.
func (rb *recvBuffer) Append(payload []byte) {
	owned := make([]byte, len(payload))
	copy(owned, payload)
	rb.entries = append(rb.entries, recvEntry{payload: owned})
}

// AppendEndOfStream appends the zero-length end-of-stream marker emitted
// once, on the drain that follows a peer FIN.
func (rb *recvBuffer) AppendEndOfStream() {
	rb.entries = append(rb.entries, recvEntry{endOfStream: true})
}

// Len returns the number of queued entries.
func (rb *recvBuffer) Len() int { return len(rb.entries) }

// Empty reports whether the queue has no entries.
func (rb *recvBuffer) Empty() bool { return len(rb.entries) == 0 }

// TotalRemaining returns the sum of each entry's undelivered byte count.
func (rb *recvBuffer) TotalRemaining() int {
	var total int
	for i := range rb.entries {
		total += rb.entries[i].bytesRemaining()
	}
	return total
}
