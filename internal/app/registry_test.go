package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newSession(sid string) core.MemberSession {
	meta := domain.NewMember(domain.Identity{ID: domain.UserID("user-" + sid), Name: sid})
	return core.NewMemberSession(core.SessionID(sid), meta, nopConn{})
}

func TestRegistry_RoomLifecycle(t *testing.T) {
	r := NewRegistry()
	r.Bind("s1", newSession("s1"), nil)

	_, _, ok := r.RoomOf("s1")
	assert.False(t, ok, "authenticated but not in a room")

	require.True(t, r.UpdateRoom("s1", "m1"))
	id, sess, ok := r.RoomOf("s1")
	require.True(t, ok)
	assert.Equal(t, domain.MeetingID("m1"), id)
	assert.Equal(t, core.SessionID("s1"), sess.ID())

	assert.False(t, r.RemoveRoom("s1", "m2"), "only clears the matching room")
	assert.True(t, r.RemoveRoom("s1", "m1"))
	_, _, ok = r.RoomOf("s1")
	assert.False(t, ok)

	assert.False(t, r.UpdateRoom("nope", "m1"))
}

func TestRegistry_UnbindOnce(t *testing.T) {
	r := NewRegistry()
	r.Bind("s1", newSession("s1"), nil)
	r.UpdateRoom("s1", "m1")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if id, _, ok := r.Unbind("s1"); ok {
				assert.Equal(t, domain.MeetingID("m1"), id)
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_Cancel(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	r.Bind("s1", newSession("s1"), cancel)

	assert.True(t, r.Cancel("s1"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, r.Cancel("s2"))
	assert.Len(t, r.All(), 1)
}
