package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a per-user sliding window rate limiter.
type Limiter struct {
	mu       sync.Mutex
	requests map[int64][]time.Time
	limit    int
	window   time.Duration
	stop     chan struct{}
	stopped  bool
}

type Config struct {
	RequestsPerMinute int
	Window            time.Duration
}

func New(cfg Config) *Limiter {
	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 10
	}
	window := cfg.Window
	if window == 0 {
		window = time.Minute
	}

	l := &Limiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow records the request and reports whether the user is under the limit.
func (l *Limiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	fresh := l.prune(userID, now)

	if len(fresh) >= l.limit {
		l.requests[userID] = fresh
		return false
	}

	l.requests[userID] = append(fresh, now)
	return true
}

func (l *Limiter) Remaining(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.prune(userID, time.Now())
	l.requests[userID] = fresh

	if rem := l.limit - len(fresh); rem > 0 {
		return rem
	}
	return 0
}

// RetryAfter reports how long until the oldest recorded request leaves the
// window. Zero when the user is not limited.
func (l *Limiter) RetryAfter(userID int64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	fresh := l.prune(userID, now)
	l.requests[userID] = fresh

	if len(fresh) < l.limit {
		return 0
	}

	oldest := fresh[0]
	for _, t := range fresh[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest.Add(l.window).Sub(now)
}

func (l *Limiter) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
	l.mu.Unlock()
}

// prune drops timestamps outside the window. Caller holds the lock.
func (l *Limiter) prune(userID int64, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	old := l.requests[userID]
	fresh := old[:0]
	for _, t := range old {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

func (l *Limiter) cleanup() {
	tick := time.NewTicker(5 * time.Minute)
	defer tick.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-tick.C:
			l.mu.Lock()
			now := time.Now()
			for uid := range l.requests {
				fresh := l.prune(uid, now)
				if len(fresh) == 0 {
					delete(l.requests, uid)
				} else {
					l.requests[uid] = fresh
				}
			}
			l.mu.Unlock()
		}
	}
}
