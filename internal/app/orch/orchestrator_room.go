package orch

import (
	"context"
	"errors"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
	"github.com/dkeye/Meet/internal/util"
	"github.com/rs/zerolog/log"
)

// admit asks the meeting store whether user may join id. Any unexpected
// failure refuses the join.
func (o *Orchestrator) admit(ctx context.Context, id domain.MeetingID, uid domain.UserID) (*domain.MeetingSummary, error) {
	meeting, err := util.Bounded(ctx, o.timeout(), func(ctx context.Context) (*domain.MeetingSummary, error) {
		return o.Gateway.GetMeeting(ctx, id)
	})
	switch {
	case errors.Is(err, domain.ErrMeetingNotFound):
		return nil, &protocol.RoomError{Code: protocol.CodeNotFound, Message: "meeting not found", Err: err}
	case errors.Is(err, util.ErrTimeout):
		return nil, protocol.Upstream("meeting lookup timed out", err)
	case err != nil:
		return nil, &protocol.RoomError{Code: protocol.CodeForbidden, Message: "cannot join meeting", Err: err}
	case meeting == nil:
		return nil, protocol.NewError(protocol.CodeNotFound, "meeting not found")
	}
	if meeting.Ended() {
		return nil, protocol.NewError(protocol.CodeMeetingEnded, "this meeting has already ended")
	}

	allowed, err := util.Bounded(ctx, o.timeout(), func(ctx context.Context) (bool, error) {
		return o.Gateway.IsParticipant(ctx, id, uid)
	})
	switch {
	case errors.Is(err, util.ErrTimeout):
		return nil, protocol.Upstream("participant check timed out", err)
	case err != nil:
		return nil, &protocol.RoomError{Code: protocol.CodeForbidden, Message: "cannot join meeting", Err: err}
	case !allowed:
		return nil, protocol.NewError(protocol.CodeForbidden, "you are not a participant of this meeting")
	}
	return meeting, nil
}

// Join moves sid into meeting id. Joining the current room again only
// repeats the meeting-joined reply.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, id domain.MeetingID) error {
	sess, ok := o.Registry.Get(sid)
	if !ok {
		return protocol.NewError(protocol.CodeNotInRoom, "unknown connection")
	}
	user := sess.Meta().User

	meeting, err := o.admit(ctx, id, user.ID)
	if err != nil {
		return err
	}

	current, _, inRoom := o.Registry.RoomOf(sid)
	if inRoom && current == id {
		if m, member := o.Rooms.FindMemberByUser(id, user.ID); member && m.ID() == sid {
			o.sendJoined(sess, id, meeting)
			return nil
		}
	}
	if inRoom {
		o.leaveRoom(sess, current)
	}

	res := o.Rooms.AddMember(id, sess)
	o.Registry.UpdateRoom(sid, id)
	room, ok := o.Rooms.Room(id)
	if ok && res.Created {
		room.SetRecording(meeting.Recording)
	}
	if res.Replaced != nil {
		o.evict(id, res.Replaced, sid)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(user.ID)).Str("meeting", string(id)).Msg("joined")

	o.sendJoined(sess, id, meeting)

	hostBack := meeting.OriginalHostID != "" && meeting.OriginalHostID == user.ID
	if hostBack {
		o.restoreHost(ctx, id, user)
	}
	o.broadcast(id, sid, protocol.TypeUserJoined, protocol.UserJoined{Identity: user, IsHostRestored: hostBack})
	return nil
}

func (o *Orchestrator) sendJoined(sess core.MemberSession, id domain.MeetingID, meeting *domain.MeetingSummary) {
	existing := make([]domain.Identity, 0)
	recording := meeting.Recording
	if room, ok := o.Rooms.Room(id); ok {
		for _, m := range room.MembersSnapshot() {
			if m.ID == sess.Meta().User.ID {
				continue
			}
			existing = append(existing, domain.Identity{ID: m.ID, Name: m.Name, Email: m.Email})
		}
		recording = room.Recording()
	}
	o.send(sess, protocol.TypeMeetingJoined, id, protocol.MeetingJoined{
		Meeting:       protocol.MeetingInfo{ID: meeting.ID, Title: meeting.Title, Host: meeting.HostID},
		ExistingUsers: existing,
		Recording:     recording,
		IceServers:    o.ICEServers,
	})
}

// evict handles an older connection of the same user that a new join
// pushed out of the room.
func (o *Orchestrator) evict(id domain.MeetingID, old core.MemberSession, by core.SessionID) {
	o.Registry.RemoveRoom(old.ID(), id)
	o.send(old, protocol.TypeSessionReplaced, id, protocol.Notice{Message: "joined from another connection"})
	old.Signal().Close()
	o.broadcast(id, by, protocol.TypeUserLeft, old.Meta().User)
	log.Info().Str("module", "orch").Str("sid", string(old.ID())).Str("by", string(by)).Str("meeting", string(id)).Msg("session replaced")
}

// Leave takes sid out of its room. It never fails; the sender always gets
// meeting-left.
func (o *Orchestrator) Leave(ctx context.Context, sid core.SessionID) {
	sess, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	id, _, inRoom := o.Registry.RoomOf(sid)
	if inRoom && o.leaveRoom(sess, id) {
		o.transferHost(ctx, id, sess.Meta().User)
	}
	o.send(sess, protocol.TypeMeetingLeft, id, nil)
}

// leaveRoom only touches in-memory state. It reports whether sess was
// still a member of id.
func (o *Orchestrator) leaveRoom(sess core.MemberSession, id domain.MeetingID) bool {
	sid := sess.ID()
	o.Registry.RemoveRoom(sid, id)
	if !o.Rooms.RemoveMember(id, sid) {
		return false
	}
	user := sess.Meta().User
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(user.ID)).Str("meeting", string(id)).Msg("left")
	o.broadcast(id, sid, protocol.TypeUserLeft, user)
	return true
}

// transferHost promotes the longest-present remaining member when the
// host explicitly leaves a room that still has people in it. Dropped
// connections never hand the meeting over.
func (o *Orchestrator) transferHost(ctx context.Context, id domain.MeetingID, leaving domain.Identity) {
	room, ok := o.Rooms.Room(id)
	if !ok {
		return
	}
	meeting, err := util.Bounded(ctx, o.timeout(), func(ctx context.Context) (*domain.MeetingSummary, error) {
		return o.Gateway.GetMeeting(ctx, id)
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("meeting", string(id)).Msg("host transfer lookup")
		return
	}
	if meeting.HostID != leaving.ID || meeting.OriginalHostID != "" || meeting.Ended() {
		return
	}
	var next domain.Identity
	for _, s := range room.Sessions() {
		if u := s.Meta().User; u.ID != leaving.ID {
			next = u
			break
		}
	}
	if next.ID == "" {
		return
	}
	err = util.BoundedErr(ctx, o.timeout(), func(ctx context.Context) error {
		return o.Gateway.TransferHost(ctx, id, leaving.ID, next.ID)
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("meeting", string(id)).Msg("host transfer")
		return
	}
	o.broadcast(id, core.NoSession, protocol.TypeHostTransferred, protocol.HostTransferred{
		PreviousHost: protocol.UserRef{UserID: leaving.ID, Name: leaving.Name},
		NewHost:      protocol.UserRef{UserID: next.ID, Name: next.Name},
	})
	log.Info().Str("module", "orch").Str("meeting", string(id)).Str("from", string(leaving.ID)).Str("to", string(next.ID)).Msg("host transferred")
}

func (o *Orchestrator) restoreHost(ctx context.Context, id domain.MeetingID, host domain.Identity) {
	type restored struct {
		p  domain.Participant
		ok bool
	}
	r, err := util.Bounded(ctx, o.timeout(), func(ctx context.Context) (restored, error) {
		p, ok, err := o.Gateway.RestoreHost(ctx, id, host.ID)
		return restored{p, ok}, err
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("meeting", string(id)).Msg("host restore")
		return
	}
	if !r.ok {
		return
	}
	o.broadcast(id, core.NoSession, protocol.TypeHostRestored, protocol.HostRestored{
		OriginalHost:          protocol.UserRef{UserID: host.ID, Name: host.Name},
		PreviousTemporaryHost: protocol.UserRef{UserID: r.p.UserID, Name: r.p.Name},
	})
	log.Info().Str("module", "orch").Str("meeting", string(id)).Str("host", string(host.ID)).Msg("host restored")
}

// EndMeeting is host-only. Everyone else is told and disconnected; the
// host stays connected but leaves the room.
func (o *Orchestrator) EndMeeting(ctx context.Context, sid core.SessionID, claimed domain.MeetingID) error {
	id, sess, err := o.inRoom(sid, claimed)
	if err != nil {
		return err
	}
	user := sess.Meta().User
	host, err := o.isHost(ctx, id, user.ID)
	if err != nil {
		return err
	}
	if !host {
		return protocol.NewError(protocol.CodeNotHost, "only the meeting host can end the meeting")
	}
	err = util.BoundedErr(ctx, o.timeout(), func(ctx context.Context) error {
		return o.Gateway.EndMeeting(ctx, id, o.now())
	})
	if err != nil {
		return upstream("end meeting", err)
	}

	ended := protocol.MeetingEnded{Message: "Meeting ended by host", EndedBy: user.Name}
	for _, s := range o.Rooms.StopRoom(id) {
		o.Registry.RemoveRoom(s.ID(), id)
		if s.ID() == sid {
			continue
		}
		o.send(s, protocol.TypeMeetingEnded, id, ended)
		s.Signal().Close()
	}
	o.send(sess, protocol.TypeMeetingEndedAck, id, protocol.Notice{Message: "Meeting ended successfully"})
	log.Info().Str("module", "orch").Str("meeting", string(id)).Str("host", string(user.ID)).Msg("meeting ended")
	return nil
}
