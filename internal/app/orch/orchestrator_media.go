package orch

import (
	"errors"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Relay forwards an offer, answer or ICE candidate to one member of the
// sender's room. A target that is not in the room is dropped silently.
func (o *Orchestrator) Relay(sid core.SessionID, r protocol.Relay) error {
	id, sess, err := o.inRoom(sid, r.Meeting())
	if err != nil {
		return err
	}
	from := sess.Meta().User.ID
	target, ok := o.Rooms.FindMemberByUser(id, r.Target)
	if !ok || target.ID() == sid {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("target", string(r.Target)).Str("type", string(r.Kind())).Msg("relay target not in room")
		return nil
	}
	frame, err := protocol.EncodeRelay(r, from)
	if err != nil {
		return protocol.NewError(protocol.CodeBadPayload, "cannot forward payload")
	}
	if err := o.Rooms.SendTo(id, target.ID(), frame); err != nil {
		if errors.Is(err, core.ErrNotMember) {
			return nil
		}
		o.onDropped(id, []core.MemberSession{target})
	}
	return nil
}

// Presence broadcasts screen share, mute and raised hand changes to the
// rest of the room.
func (o *Orchestrator) Presence(sid core.SessionID, in protocol.Inbound) error {
	id, sess, err := o.inRoom(sid, in.Meeting())
	if err != nil {
		return err
	}
	user := sess.Meta().User
	switch ev := in.(type) {
	case protocol.ScreenShare:
		o.broadcast(id, sid, ev.Kind(), protocol.UserRef{UserID: user.ID, Name: user.Name})
	case protocol.Mute:
		o.broadcast(id, sid, ev.Kind(), protocol.Muted{UserID: user.ID, Muted: ev.Muted})
	case protocol.RaiseHand:
		o.broadcast(id, sid, ev.Kind(), protocol.HandRaised{UserID: user.ID, Name: user.Name, Raised: ev.Raised})
	default:
		return protocol.NewError(protocol.CodeUnknownType, "not a presence event: "+string(in.Kind()))
	}
	return nil
}
