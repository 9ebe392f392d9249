package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRoomRateLimiter(2, 10*time.Second)
	rl.now = func() time.Time { return now }
	rl.Track("u1")

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"), "limits are per user")

	now = now.Add(11 * time.Second)
	assert.True(t, rl.Allow("u1"), "window slides")

	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	rl.Release("u1")
	assert.True(t, rl.Allow("u1"))
}

func TestRoomRateLimiterKeepsWindowWhileUserConnected(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRoomRateLimiter(1, 10*time.Second)
	rl.now = func() time.Time { return now }

	rl.Track("u1")
	rl.Track("u1")
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))

	rl.Release("u1")
	assert.False(t, rl.Allow("u1"), "second connection still counts against the window")

	rl.Release("u1")
	assert.True(t, rl.Allow("u1"))
}
