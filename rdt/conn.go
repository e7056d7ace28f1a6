package rdt

// truncateSentinel marks a chunk that begins with this exact byte
// sequence as a truncated read for this input-ready cycle, not
// end-of-stream. It is never enqueued.
const truncateSentinel = "###truncate###"

// Conn drives one end of a connection. It never performs I/O itself;
// every side effect goes through the Adapter supplied to Init. A Conn
// must only be touched from the four entry points below, invoked
// serially by the host - see package doc.go.
type Conn struct {
	logger
	adapter Adapter
	cfg     Config

	seqno     Value // left edge: seqno <= nextSeqno, advanced only by ACKs
	nextSeqno Value // next sequence number this side will assign
	ackno     Value // next byte expected from the peer
	lastAckno Value // previous in-order boundary, for duplicate detection
	// haveLastAckno guards the duplicate-detection shortcut: before any
	// data or FIN has been accepted from the peer, ackno and lastAckno
	// are both still cfg.InitialSeqno, which would otherwise make the
	// very first in-order segment indistinguishable from a duplicate.
	haveLastAckno bool

	tx sendBuffer
	rx recvBuffer

	timer    retransmitTimer
	teardown TeardownState

	finSent  bool
	finAcked bool
	finSeqno Value
	// finForced marks that a retry-budget exhaustion has already forced a
	// FIN once; a second exhaustion while it still isn't acked destroys
	// the connection instead of forcing another one.
	finForced bool

	destroyed bool
	stats     Stats
}

// Init constructs a Conn bound to adapter, ready to run. There is no
// handshake in this protocol: both ends are expected to agree on
// cfg.InitialSeqno out of band, as part of the datagram layer's own
// session setup.
func Init(adapter Adapter, cfg Config) *Conn {
	cfg = cfg.withDefaults()
	c := &Conn{
		adapter:   adapter,
		cfg:       cfg,
		seqno:     cfg.InitialSeqno,
		nextSeqno: cfg.InitialSeqno,
		ackno:     cfg.InitialSeqno,
		lastAckno: cfg.InitialSeqno,
		timer:     newRetransmitTimer(int(cfg.RTTimeout.Milliseconds()), int(cfg.TickPeriod.Milliseconds())),
	}
	c.logger.log = cfg.Logger
	return c
}

// Destroyed reports whether this connection has torn down and should be
// dropped by the host.
func (c *Conn) Destroyed() bool { return c.destroyed }

func (c *Conn) advertisedWindow() Size {
	free := c.cfg.RecvWindow - Size(c.rx.TotalRemaining())
	return (free / Size(MaxSegDataSize)) * Size(MaxSegDataSize)
}

// OnInputReady is the entry point the host calls when the outbound byte
// stream has data available to read.
func (c *Conn) OnInputReady() {
	if c.destroyed || c.finSent {
		return
	}
	var buf [MaxSegDataSize]byte
	eof := false
	for {
		n := c.adapter.ConnInput(buf[:])
		if n == 0 {
			break
		}
		if n < 0 {
			eof = true
			break
		}
		chunk := buf[:n]
		if len(chunk) >= len(truncateSentinel) && string(chunk[:len(truncateSentinel)]) == truncateSentinel {
			c.trace("input truncated")
			break
		}
		c.tx.Enqueue(chunk)
	}
	c.sendPossible()
	if eof {
		c.onInputEOF()
	}
}

// onInputEOF handles a local end-of-stream from the NONE teardown state.
// It runs after sendPossible has already flushed any data enqueued
// earlier in the same cycle, so the FIN is correctly anchored past that
// data in sequence space.
func (c *Conn) onInputEOF() {
	if c.teardown != TeardownNone {
		return
	}
	c.teardown = TeardownActiveClose
	c.sendFIN()
}

// sendPossible is the transmit pass: it resets the Go-Back-N replay
// anchor to seqno and walks the send queue, handing every entry that fits
// within the send window to the datagram adapter. If a FIN has already
// been sent, its reserved sequence slot (immediately after all queued
// data) is preserved even as the queue drains out from under it via ACKs.
func (c *Conn) sendPossible() {
	window := c.cfg.SendWindow
	next := c.tx.Walk(c.seqno, window, func(seq Value, e *sendEntry) {
		seg := Segment{SEQ: seq, WND: c.advertisedWindow(), Payload: e.payload}
		c.transmit(seg)
	})
	if c.finSent {
		next = Add(c.finSeqno, 1)
	}
	c.nextSeqno = next
	if !c.tx.Empty() || (c.finSent && !c.finAcked) {
		c.timer.Arm()
	}
}

// maxSendAttempts bounds the "loop until accepted" send: a real datagram
// adapter (a UDP socket) accepts a whole datagram in one call outside of
// pathological cases, so a small bound keeps the core from ever spinning
// indefinitely on a misbehaving adapter.
const maxSendAttempts = 4

// transmit encodes seg and hands it to the datagram adapter, looping
// until every byte is accepted or maxSendAttempts is exhausted (the
// adapter's SendDatagram may partial-write).
func (c *Conn) transmit(seg Segment) {
	buf := make([]byte, HeaderSize+len(seg.Payload))
	n, err := Encode(buf, seg)
	if err != nil {
		c.logerr("encode segment", err)
		return
	}
	buf = buf[:n]
	for attempt := 0; len(buf) > 0 && attempt < maxSendAttempts; attempt++ {
		sent := c.adapter.SendDatagram(buf)
		if sent <= 0 {
			break
		}
		buf = buf[sent:]
	}
	c.stats.SegmentsSent++
	c.stats.BytesSent += uint64(len(seg.Payload))
	c.traceSeg("tx", seg)
}

func (c *Conn) sendFIN() {
	c.finSeqno = c.nextSeqno
	c.nextSeqno = Add(c.nextSeqno, 1)
	c.finSent = true
	c.transmit(Segment{SEQ: c.finSeqno, Flags: FlagFIN, WND: c.advertisedWindow()})
	c.timer.Arm()
}

func (c *Conn) sendAck(ack Value) {
	c.transmit(Segment{SEQ: c.nextSeqno, ACK: ack, Flags: FlagACK, WND: c.advertisedWindow()})
}

// segmentClass is the four-way bucket incoming segments are dispatched
// into.
type segmentClass uint8

const (
	classData segmentClass = iota
	classAck
	classFinWithAck
	classFin
)

func classify(seg Segment) segmentClass {
	hasFIN := seg.Flags.HasAny(FlagFIN)
	hasACK := seg.Flags.HasAny(FlagACK)
	switch {
	case hasFIN && hasACK:
		return classFinWithAck
	case hasFIN:
		return classFin
	case len(seg.Payload) > 0:
		return classData
	default:
		return classAck
	}
}

// OnDatagram is the entry point the host calls with each datagram the
// unreliable transport delivers.
func (c *Conn) OnDatagram(buf []byte) {
	if c.destroyed {
		return
	}
	seg, err := Decode(buf)
	if err != nil {
		c.stats.SegmentsDropped++
		c.logerr("decode segment", err)
		return
	}
	c.stats.SegmentsReceived++
	c.traceSeg("rx", seg)

	class := classify(seg)
	if c.haveLastAckno && seg.SEQ == c.lastAckno && class != classAck {
		c.sendAck(c.lastAckno)
		return
	}

	if class == classAck || class == classFinWithAck {
		c.processAck(seg)
		if c.destroyed {
			return
		}
	}
	switch class {
	case classData:
		c.handleData(seg)
	case classFin, classFinWithAck:
		c.handleFin(seg)
	}
}

// processAck handles an incoming cumulative ACK.
func (c *Conn) processAck(seg Segment) {
	A := seg.ACK
	_, newLeftEdge := c.tx.RemoveThrough(A, c.seqno)
	c.seqno = newLeftEdge
	if c.finSent && !c.finAcked && c.nextSeqno.LessThanEq(A) {
		c.finAcked = true
	}
	if A == c.nextSeqno {
		c.timer.Disarm()
	}
	c.timer.ResetCounters()

	// A forced FIN that the peer has now acked ends the connection here too,
	// unless the segment also carries the peer's FIN, which handleFin acks
	// before destroying.
	if c.finAcked && (c.teardown == TeardownPassiveClose || (c.finForced && !seg.Flags.HasAny(FlagFIN))) {
		c.destroy()
		return
	}
	c.sendPossible()
}

// handleData accepts an in-order payload into the receive queue if window
// allows, updates ackno, and acks. Out-of-window or out-of-order segments
// are silently dropped, relying on the sender's retransmit timer.
func (c *Conn) handleData(seg Segment) {
	if seg.SEQ != c.ackno {
		c.stats.SegmentsDropped++
		return
	}
	payloadLen := Size(len(seg.Payload))
	if Size(c.rx.TotalRemaining())+payloadLen > c.cfg.RecvWindow {
		c.stats.SegmentsDropped++
		return
	}
	c.rx.Append(seg.Payload)
	c.stats.BytesReceived += uint64(len(seg.Payload))
	c.lastAckno = c.ackno
	c.haveLastAckno = true
	c.ackno = seg.SegmentEnd()
	c.sendAck(c.ackno)
	c.drain()
}

// handleFin reacts to a received FIN from both NONE (passive close) and
// ACTIVE_CLOSE (final leg of active close).
func (c *Conn) handleFin(seg Segment) {
	if seg.SEQ != c.ackno {
		c.stats.SegmentsDropped++
		return
	}
	switch c.teardown {
	case TeardownNone:
		c.lastAckno = c.ackno
		c.haveLastAckno = true
		c.ackno = Add(seg.SEQ, 1)
		c.sendAck(c.ackno)
		c.rx.AppendEndOfStream()
		c.drain()
		c.teardown = TeardownPassiveClose
		c.sendFIN()
	case TeardownActiveClose:
		c.lastAckno = c.ackno
		c.haveLastAckno = true
		c.ackno = Add(seg.SEQ, 1)
		c.sendAck(c.ackno)
		if c.finAcked {
			c.destroy()
		}
	}
}

// drain delivers as much of the receive queue to the output stream as it
// has room for, acking each entry fully drained.
func (c *Conn) drain() {
	for !c.rx.Empty() {
		e := &c.rx.entries[0]
		if e.endOfStream {
			c.adapter.ConnOutput(nil)
			c.rx.entries = c.rx.entries[1:]
			c.sendAck(c.ackno)
			continue
		}
		remaining := e.bytesRemaining()
		space := c.adapter.ConnBufSpace()
		if space <= 0 || space < remaining {
			break
		}
		n := c.adapter.ConnOutput(e.payload[e.bytesDelivered:])
		e.bytesDelivered += n
		if e.bytesRemaining() > 0 {
			break
		}
		c.rx.entries = c.rx.entries[1:]
		c.sendAck(c.ackno)
	}
}

// OnOutputSpace is the entry point the host calls when the output byte
// stream gains room to accept more bytes.
func (c *Conn) OnOutputSpace() {
	if c.destroyed {
		return
	}
	c.drain()
}

// OnTick is the entry point the host calls once per timer period. It
// drives the retransmit timer and, on expiry, either replays the send
// window (Go-Back-N) or resends the outstanding FIN, depending on
// teardown state. The first time the retry budget is exhausted, a FIN is
// forced (or, if one is already outstanding from an earlier graceful
// close, simply resent) regardless of prior teardown state, and the
// connection re-enters ACTIVE_CLOSE with its retry counters reset,
// giving the peer one more retry interval to respond. If the budget is
// exhausted again while that FIN is still unacked, the connection is
// destroyed outright; an ACK arriving first destroys it the ordinary
// way instead. While the timer is disarmed, OnTick still opportunistically
// retries a send/drain pass, since a host that only ever drives the
// connection through ticks needs some way to notice newly available
// input or output space.
func (c *Conn) OnTick() {
	if c.destroyed {
		return
	}
	if !c.timer.enabled {
		c.sendPossible()
		c.drain()
		return
	}
	if !c.timer.Tick() {
		return
	}
	if c.timer.RetryBudgetExhausted() {
		if c.finForced {
			c.destroy()
			return
		}
		c.finForced = true
		c.teardown = TeardownActiveClose
		c.timer.ResetCounters()
		if c.finSent {
			c.transmit(Segment{SEQ: c.finSeqno, Flags: FlagFIN, ACK: c.lastAckno, WND: c.advertisedWindow()})
			c.timer.Arm()
		} else {
			c.sendFIN()
		}
		return
	}
	c.stats.Retransmits++
	if c.teardown != TeardownNone {
		c.transmit(Segment{SEQ: c.finSeqno, Flags: FlagFIN, ACK: c.lastAckno, WND: c.advertisedWindow()})
		return
	}
	c.nextSeqno = c.tx.Walk(c.seqno, c.cfg.SendWindow, func(seq Value, e *sendEntry) {
		c.transmit(Segment{SEQ: seq, WND: c.advertisedWindow(), Payload: e.payload})
	})
}

func (c *Conn) destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.timer.Disarm()
	c.adapter.EndClient()
	c.adapter.ConnRemove()
	c.debug("connection destroyed")
}
