package extraction

import "time"

// QuotaLimiter is a fixed-window throttle for the cloud vision strategy:
// every time the call count crosses a multiple of the window, the caller
// must pause before issuing the next request. Bursts inside a window are
// allowed; only the boundary crossing is throttled.
type QuotaLimiter struct {
	window int
	pause  time.Duration
}

func NewQuotaLimiter(window int, pause time.Duration) *QuotaLimiter {
	return &QuotaLimiter{window: window, pause: pause}
}

// Pause returns how long to wait before the next call given the number of
// calls made so far, or zero when no wait is due.
func (l *QuotaLimiter) Pause(callsSoFar int) time.Duration {
	if l == nil || l.window <= 0 || callsSoFar <= 0 {
		return 0
	}
	if callsSoFar%l.window == 0 {
		return l.pause
	}
	return 0
}
