package rdt

// maxRetries is the retransmit retry budget: the 6th consecutive RTO
// expiry forces a FIN regardless of prior teardown state.
const maxRetries = 6

// retransmitTimer counts ticks to RTO, then drives Go-Back-N and eventual
// death once the retry budget is exhausted. It carries no notion of *what*
// to retransmit - that's the connection driver's job - only *when*.
type retransmitTimer struct {
	enabled     bool
	tickCounter int
	retryCount  int
	ticksPerRTO int
}

// newRetransmitTimer computes ticksPerRTO = ceil(rtTimeout/tickPeriod).
func newRetransmitTimer(rtTimeoutMillis, tickPeriodMillis int) retransmitTimer {
	if tickPeriodMillis <= 0 {
		tickPeriodMillis = 1
	}
	ticks := (rtTimeoutMillis + tickPeriodMillis - 1) / tickPeriodMillis
	if ticks < 1 {
		ticks = 1
	}
	return retransmitTimer{ticksPerRTO: ticks}
}

// Arm enables the timer. Should be called whenever the send queue is
// non-empty or an unacknowledged FIN has been sent.
func (t *retransmitTimer) Arm() { t.enabled = true }

// Disarm disables the timer without touching its counters.
func (t *retransmitTimer) Disarm() { t.enabled = false }

// ResetCounters zeroes tick and retry counts, as every processed ACK does
// regardless of whether it fully caught the sender up.
func (t *retransmitTimer) ResetCounters() {
	t.tickCounter = 0
	t.retryCount = 0
}

// Tick advances the tick counter by one and reports whether this tick is an
// RTO expiry (tickCounter reached ticksPerRTO). On expiry the tick counter
// is reset and retryCount incremented. Tick must only be called while the
// timer is enabled.
func (t *retransmitTimer) Tick() (expired bool) {
	t.tickCounter++
	if t.tickCounter == t.ticksPerRTO {
		t.tickCounter = 0
		t.retryCount++
		return true
	}
	return false
}

// RetryBudgetExhausted reports whether the connection has hit the 6th
// consecutive RTO expiry.
func (t *retransmitTimer) RetryBudgetExhausted() bool { return t.retryCount >= maxRetries }
