package internal

import "time"

// BackoffClass selects the maximum sleep a Backoff will settle into, so a
// polling loop can wait on state owned by the non-blocking core without
// busy-spinning.
type BackoffClass uint8

const (
	// BackoffStdio paces the goroutine that copies blocking stdin/stdout
	// into/out of the ring buffers handed to the transport core.
	BackoffStdio BackoffClass = iota
	// BackoffDatagram caps the wait at 1ms instead of 5ms. No loop in this
	// module selects it.
	BackoffDatagram
)

const backoffMinWait = time.Microsecond

func backoffMaxWait(class BackoffClass) time.Duration {
	switch class {
	case BackoffDatagram:
		return time.Millisecond
	default:
		return 5 * time.Millisecond
	}
}

// NewBackoff returns a Backoff ready to use for the given class.
func NewBackoff(class BackoffClass) Backoff {
	return Backoff{
		wait:    uint32(backoffMinWait),
		maxWait: uint32(backoffMaxWait(class)),
	}
}

// Backoff implements exponential backoff between polls of non-blocking
// state, bottoming out at maxWait instead of growing unbounded.
type Backoff struct {
	wait    uint32
	maxWait uint32
}

// Hit resets the wait interval after a successful poll.
func (b *Backoff) Hit() { b.wait = uint32(backoffMinWait) }

// Miss sleeps for the current wait interval and doubles it, up to maxWait.
func (b *Backoff) Miss() {
	time.Sleep(time.Duration(b.wait))
	b.wait *= 2
	if b.wait > b.maxWait {
		b.wait = b.maxWait
	}
}
