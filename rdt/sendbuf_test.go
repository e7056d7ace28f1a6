package rdt

import "testing"

func TestSendBufferWalkRespectsWindow(t *testing.T) {
	var sb sendBuffer
	sb.Enqueue([]byte("aaaaa")) // 5 bytes
	sb.Enqueue([]byte("bbbbb")) // 5 bytes
	sb.Enqueue([]byte("ccccc")) // 5 bytes

	var sent [][]byte
	next := sb.Walk(100, 8, func(seq Value, e *sendEntry) {
		sent = append(sent, append([]byte(nil), e.payload...))
		if seq != 100+Value(len(sent)-1)*5 {
			t.Errorf("unexpected seq %d for entry %d", seq, len(sent)-1)
		}
	})
	if len(sent) != 1 {
		t.Fatalf("expected only first entry to fit an 8-byte window, got %d entries", len(sent))
	}
	if next != 105 {
		t.Fatalf("next_seqno = %d, want 105", next)
	}
}

func TestSendBufferWalkSendsEverythingThatFits(t *testing.T) {
	var sb sendBuffer
	sb.Enqueue([]byte("hello"))
	sb.Enqueue([]byte("world"))

	var count int
	next := sb.Walk(1, 1024, func(Value, *sendEntry) { count++ })
	if count != 2 {
		t.Fatalf("expected both entries sent, got %d", count)
	}
	if next != 11 {
		t.Fatalf("next_seqno = %d, want 11", next)
	}
}

func TestSendBufferRemoveThroughCumulativeAck(t *testing.T) {
	var sb sendBuffer
	sb.Enqueue([]byte("hello")) // seq 1..6
	sb.Enqueue([]byte("world")) // seq 6..11
	sb.Walk(1, 1024, func(Value, *sendEntry) {})

	removed, newLeftEdge := sb.RemoveThrough(6, 1)
	if removed != 5 {
		t.Fatalf("removed = %d, want 5", removed)
	}
	if newLeftEdge != 6 {
		t.Fatalf("newLeftEdge = %d, want 6", newLeftEdge)
	}
	if sb.Len() != 1 {
		t.Fatalf("expected one entry left in queue, got %d", sb.Len())
	}

	removed, newLeftEdge = sb.RemoveThrough(11, 6)
	if removed != 5 || newLeftEdge != 11 {
		t.Fatalf("got removed=%d newLeftEdge=%d, want 5,11", removed, newLeftEdge)
	}
	if !sb.Empty() {
		t.Fatal("expected queue to be empty after full cumulative ack")
	}
}

func TestSendBufferRemoveThroughPartialAckLeavesQueueIntact(t *testing.T) {
	var sb sendBuffer
	sb.Enqueue([]byte("hello"))
	sb.Walk(1, 1024, func(Value, *sendEntry) {})

	removed, newLeftEdge := sb.RemoveThrough(3, 1) // ack below the entry's segment end
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if newLeftEdge != 1 {
		t.Fatalf("newLeftEdge = %d, want unchanged 1", newLeftEdge)
	}
	if sb.Len() != 1 {
		t.Fatalf("expected entry to remain queued, got len %d", sb.Len())
	}
}
