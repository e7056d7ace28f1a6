package rdt

import (
	"log/slog"
	"time"
)

// Default window sizes and timing, chosen to match the worked examples
// (an initial sequence number of 1, single-segment exchanges that never
// stress the window) while staying representative of a real deployment.
const (
	DefaultSendWindow    Size = 64 * 1024
	DefaultRecvWindow    Size = 64 * 1024
	DefaultRTTimeout          = 200 * time.Millisecond
	DefaultTickPeriod         = 20 * time.Millisecond
	DefaultInitialSeqno  Value = 1
)

// Config configures a single Conn. Zero-valued fields are replaced with
// their Default* counterpart by Init, treating a zero Config as
// "reasonable defaults" rather than an error.
type Config struct {
	// InitialSeqno is the sequence number of the first byte this side
	// will send, and (since this protocol has no handshake to negotiate
	// one) also the sequence number this side expects the peer's first
	// byte to carry.
	InitialSeqno Value
	SendWindow   Size
	RecvWindow   Size
	RTTimeout    time.Duration
	TickPeriod   time.Duration
	Logger       *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.InitialSeqno == 0 {
		c.InitialSeqno = DefaultInitialSeqno
	}
	if c.SendWindow == 0 {
		c.SendWindow = DefaultSendWindow
	}
	if c.RecvWindow == 0 {
		c.RecvWindow = DefaultRecvWindow
	}
	if c.RTTimeout <= 0 {
		c.RTTimeout = DefaultRTTimeout
	}
	if c.TickPeriod <= 0 {
		c.TickPeriod = DefaultTickPeriod
	}
	return c
}
