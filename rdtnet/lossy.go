package rdtnet

import (
	"math/rand"

	"golang.org/x/time/rate"
)

// LossyNetwork wraps a rdt.Adapter.SendDatagram-shaped send function with
// a token-bucket throttle (golang.org/x/time/rate) plus independent
// drop/duplicate/reorder probabilities, for exercising the retransmit
// timer and Go-Back-N replay against deterministic-ish loss without a
// real unreliable link.
type LossyNetwork struct {
	limiter     *rate.Limiter
	dropProb    float64
	dupProb     float64
	reorderProb float64
	reorder     []byte // one pending reordered datagram, sent on the following Send
	send        func(buf []byte)
	rng         *rand.Rand
}

// LossyConfig controls LossyNetwork's simulated impairments.
type LossyConfig struct {
	// RatePerSecond caps the number of datagrams forwarded per second; 0
	// disables throttling.
	RatePerSecond float64
	// Burst is the token bucket's burst size; ignored if RatePerSecond is 0.
	Burst int
	// DropProbability is the independent chance [0,1] a given datagram is
	// dropped instead of forwarded.
	DropProbability float64
	// DuplicateProbability is the independent chance [0,1] a forwarded
	// datagram is sent twice.
	DuplicateProbability float64
	// ReorderProbability is the independent chance [0,1] a forwarded
	// datagram is held back one send and delivered after the next one.
	ReorderProbability float64
	// Seed seeds the deterministic PRNG driving the above probabilities.
	Seed int64
}

// NewLossyNetwork wraps send with the impairments described by cfg.
func NewLossyNetwork(cfg LossyConfig, send func(buf []byte)) *LossyNetwork {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}
	return &LossyNetwork{
		limiter:     limiter,
		dropProb:    cfg.DropProbability,
		dupProb:     cfg.DuplicateProbability,
		reorderProb: cfg.ReorderProbability,
		send:        send,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Send applies the configured impairments to buf and forwards what
// survives to the wrapped send function. Returns len(buf) regardless of
// whether the datagram was actually delivered, matching how a real
// unreliable transport reports success at the sender even when the
// network later drops the packet.
func (l *LossyNetwork) Send(buf []byte) int {
	cp := append([]byte(nil), buf...)
	if l.limiter != nil && !l.limiter.Allow() {
		return len(buf)
	}
	if l.rng.Float64() < l.dropProb {
		return len(buf)
	}
	if l.reorder == nil && l.rng.Float64() < l.reorderProb {
		l.reorder = cp
		return len(buf)
	}
	l.deliver(cp)
	return len(buf)
}

func (l *LossyNetwork) deliver(buf []byte) {
	l.send(buf)
	if l.rng.Float64() < l.dupProb {
		l.send(buf)
	}
	if pending := l.reorder; pending != nil {
		l.reorder = nil
		l.send(pending)
	}
}
