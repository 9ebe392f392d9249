package orch

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
	"github.com/dkeye/Meet/internal/util"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const defaultTimeout = 5 * time.Second

// Orchestrator coordinates meeting sessions. Calls for one connection must
// be made sequentially; calls for different connections may run in parallel.
// No lock is held while the gateway is called.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomRegistry
	Gateway  core.MeetingGateway
	Policy   app.Policy

	ICEServers    []webrtc.ICEServer
	Timeout       time.Duration
	MaxChatLength int
	Now           func() time.Time
}

func New(reg *app.Registry, rooms core.RoomRegistry, gw core.MeetingGateway, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:      reg,
		Rooms:         rooms,
		Gateway:       gw,
		Policy:        policy,
		Timeout:       defaultTimeout,
		MaxChatLength: 2000,
		Now:           time.Now,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Orchestrator) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

// Connect registers an authenticated connection. It is not in any room yet.
func (o *Orchestrator) Connect(sid core.SessionID, user domain.Identity, conn core.SignalConnection, cancel context.CancelFunc) core.MemberSession {
	sess := core.NewMemberSession(sid, domain.NewMember(user), conn)
	o.Registry.Bind(sid, sess, cancel)
	return sess
}

// OnDisconnect runs leave cleanup for a closed connection. Repeated calls
// for the same sid are no-ops.
func (o *Orchestrator) OnDisconnect(_ context.Context, sid core.SessionID) {
	id, sess, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	if id != "" {
		o.leaveRoom(sess, id)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(sess.Meta().User.ID)).Msg("disconnected")
}

func (o *Orchestrator) Ping(sid core.SessionID) {
	if sess, ok := o.Registry.Get(sid); ok {
		o.send(sess, protocol.TypePong, "", nil)
	}
}

func (o *Orchestrator) Snapshot() []core.RoomSnapshot {
	return o.Rooms.Snapshot()
}

func (o *Orchestrator) RoomSnapshot(id domain.MeetingID) (core.RoomSnapshot, bool) {
	room, ok := o.Rooms.Room(id)
	if !ok {
		return core.RoomSnapshot{}, false
	}
	members := room.MembersSnapshot()
	return core.RoomSnapshot{ID: id, MemberCount: len(members), Participants: members}, true
}

// Shutdown closes every live connection. Each connection then runs its own
// disconnect cleanup.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	sessions := o.Registry.All()
	p := pool.New().WithMaxGoroutines(16)
	for _, s := range sessions {
		p.Go(func() {
			if ctx.Err() != nil {
				o.Registry.Cancel(s.ID())
				return
			}
			s.Signal().Close()
		})
	}
	p.Wait()
	log.Info().Str("module", "orch").Int("connections", len(sessions)).Msg("shutdown complete")
}

// WaitIdle blocks until every connection has run its disconnect cleanup
// or ctx is done.
func (o *Orchestrator) WaitIdle(ctx context.Context) error {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for o.Registry.Count() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// inRoom resolves the sender's current room. A non-empty claimed meeting
// id must match it.
func (o *Orchestrator) inRoom(sid core.SessionID, claimed domain.MeetingID) (domain.MeetingID, core.MemberSession, error) {
	id, sess, ok := o.Registry.RoomOf(sid)
	if !ok {
		return "", nil, protocol.NewError(protocol.CodeNotInRoom, "join a meeting first")
	}
	if claimed != "" && claimed != id {
		return "", nil, protocol.NewError(protocol.CodeNotInRoom, "not in meeting "+string(claimed))
	}
	return id, sess, nil
}

func (o *Orchestrator) isHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error) {
	ok, err := util.Bounded(ctx, o.timeout(), func(ctx context.Context) (bool, error) {
		return o.Gateway.IsHost(ctx, id, uid)
	})
	if err != nil {
		return false, upstream("host check", err)
	}
	return ok, nil
}

func upstream(op string, err error) *protocol.RoomError {
	if errors.Is(err, domain.ErrMeetingNotFound) {
		return &protocol.RoomError{Code: protocol.CodeNotFound, Message: "meeting not found", Err: err}
	}
	if errors.Is(err, util.ErrTimeout) {
		return protocol.Upstream(op+" timed out", err)
	}
	return protocol.Upstream(op+" failed", err)
}

func (o *Orchestrator) send(sess core.MemberSession, t protocol.Type, id domain.MeetingID, data any) {
	frame, err := protocol.Encode(t, id, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(t)).Msg("encode")
		return
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sess.ID())).Str("type", string(t)).Msg("send failed")
	}
}

// broadcast fans out to the room, skipping from. Pass core.NoSession to
// reach everyone.
func (o *Orchestrator) broadcast(id domain.MeetingID, from core.SessionID, t protocol.Type, data any) {
	frame, err := protocol.Encode(t, id, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(t)).Msg("encode")
		return
	}
	res := o.Rooms.Broadcast(id, from, frame)
	o.onDropped(id, res.Dropped)
}

func (o *Orchestrator) onDropped(id domain.MeetingID, dropped []core.MemberSession) {
	if o.Policy == nil || len(dropped) == 0 {
		return
	}
	room, ok := o.Rooms.Room(id)
	if !ok {
		return
	}
	for _, slow := range dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow.ID())).Str("meeting", string(id)).Msg("kicking slow member")
			o.Registry.Cancel(slow.ID())
		case app.DropFrame:
			log.Debug().Str("module", "orch").Str("sid", string(slow.ID())).Msg("frame dropped")
		}
	}
}
