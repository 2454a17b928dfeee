package link

import "time"

// Timer is the per-attempt retransmission clock described in spec
// section 5: a single one-shot deadline, armed before a command is
// sent and polled from the read loop instead of the reference
// implementation's process-wide SIGALRM handler. This keeps the
// engine re-entrant and free of global mutable signal state.
type Timer struct {
	deadline    time.Time
	armed       bool
	expirations int
}

// Arm starts the timer; it will report itself expired once d has
// elapsed from now.
func (t *Timer) Arm(d time.Duration) {
	t.deadline = time.Now().Add(d)
	t.armed = true
}

// Disarm clears the timer without counting an expiration.
func (t *Timer) Disarm() {
	t.armed = false
}

// Armed reports whether the timer is still counting down. If the
// deadline has already passed it first disarms itself and counts the
// expiration, mirroring the reference's alarmHandler flipping
// alarmEnabled and incrementing alarmCount.
func (t *Timer) Armed() bool {
	if t.armed && !time.Now().Before(t.deadline) {
		t.armed = false
		t.expirations++
	}
	return t.armed
}

// Expirations returns how many times the timer has fired since the
// last ResetExpirations call.
func (t *Timer) Expirations() int {
	return t.expirations
}

// ResetExpirations zeroes the expiration counter, done at the start of
// every llopen/llwrite/llclose attempt loop.
func (t *Timer) ResetExpirations() {
	t.expirations = 0
}
