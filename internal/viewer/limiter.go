package viewer

import "time"

// frameLimiter paces the loop to a target frame rate by sleeping off the
// remainder of each frame interval. With vsync on the sleep usually rounds
// to zero; the limiter is the fallback for uncapped displays.
type frameLimiter struct {
	interval time.Duration
	last     time.Time
}

func newFrameLimiter(fps int) *frameLimiter {
	l := &frameLimiter{last: time.Now()}
	if fps > 0 {
		l.interval = time.Second / time.Duration(fps)
	}
	return l
}

func (l *frameLimiter) wait() {
	if l.interval == 0 {
		return
	}
	elapsed := time.Since(l.last)
	if remaining := l.interval - elapsed; remaining > 0 {
		time.Sleep(remaining)
	}
	l.last = time.Now()
}
