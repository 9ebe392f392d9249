package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

// RoomRateLimiter is a sliding window limiter keyed by user. A user's
// window is shared by all of their connections and survives until the
// last one is released.
type RoomRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	conns    map[domain.UserID]int
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	return &RoomRateLimiter{
		history:  make(map[domain.UserID][]time.Time),
		conns:    make(map[domain.UserID]int),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RoomRateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[uid]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[uid] = fresh
		return false
	}
	rl.history[uid] = append(fresh, now)
	return true
}

// Track registers a live connection of uid.
func (rl *RoomRateLimiter) Track(uid domain.UserID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.conns[uid]++
}

// Release undoes Track. The history of uid is dropped with its last
// connection.
func (rl *RoomRateLimiter) Release(uid domain.UserID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.conns[uid] > 1 {
		rl.conns[uid]--
		return
	}
	delete(rl.conns, uid)
	delete(rl.history, uid)
}
