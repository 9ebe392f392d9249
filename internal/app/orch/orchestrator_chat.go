package orch

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
	"github.com/dkeye/Meet/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Chat persists the message and then broadcasts it to the whole room,
// sender included. Nothing is broadcast if persisting fails.
func (o *Orchestrator) Chat(ctx context.Context, sid core.SessionID, in protocol.ChatMessage) error {
	id, sess, err := o.inRoom(sid, in.Meeting())
	if err != nil {
		return err
	}
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return protocol.NewError(protocol.CodeEmptyMessage, "message is empty")
	}
	if o.MaxChatLength > 0 && utf8.RuneCountInString(text) > o.MaxChatLength {
		return protocol.NewError(protocol.CodeMessageTooLong, "message is too long")
	}
	user := sess.Meta().User
	msg := domain.ChatMessage{
		ID:         uuid.NewString(),
		MeetingID:  id,
		SenderID:   user.ID,
		SenderName: user.Name,
		Message:    text,
		Timestamp:  o.now().UTC(),
	}
	err = util.BoundedErr(ctx, o.timeout(), func(ctx context.Context) error {
		return o.Gateway.AppendChatMessage(ctx, msg)
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(id)).Msg("persist chat")
		return upstream("failed to send message", err)
	}
	o.broadcast(id, core.NoSession, protocol.TypeChatMessage, msg)
	return nil
}

// Recording starts or stops recording. Host only. The store is written
// before anyone is told.
func (o *Orchestrator) Recording(ctx context.Context, sid core.SessionID, in protocol.Recording) error {
	id, sess, err := o.inRoom(sid, in.Meeting())
	if err != nil {
		return err
	}
	user := sess.Meta().User
	host, err := o.isHost(ctx, id, user.ID)
	if err != nil {
		return err
	}
	if !host {
		if in.Start {
			return protocol.NewError(protocol.CodeNotHost, "only the host can start recording")
		}
		return protocol.NewError(protocol.CodeNotHost, "only the host can stop recording")
	}
	room, ok := o.Rooms.Room(id)
	if !ok {
		return protocol.NewError(protocol.CodeNotInRoom, "room is gone")
	}
	cur := room.Recording()
	if in.Start == cur.IsRecording {
		if in.Start {
			return protocol.NewError(protocol.CodeRecordingState, "already recording")
		}
		return protocol.NewError(protocol.CodeRecordingState, "not recording")
	}

	now := o.now().UTC()
	next := domain.RecordingState{IsRecording: in.Start}
	if in.Start {
		meeting, err := util.Bounded(ctx, o.timeout(), func(ctx context.Context) (*domain.MeetingSummary, error) {
			return o.Gateway.GetMeeting(ctx, id)
		})
		if err != nil {
			return upstream("meeting lookup", err)
		}
		if !meeting.RecordingAllowed {
			return protocol.NewError(protocol.CodeRecordingNotAllowed, "recording is not allowed in this meeting")
		}
		next.StartedBy = user.ID
		next.StartedAt = &now
	} else {
		next.StartedBy = cur.StartedBy
		next.StartedAt = cur.StartedAt
		next.StoppedAt = &now
	}

	err = util.BoundedErr(ctx, o.timeout(), func(ctx context.Context) error {
		return o.Gateway.SetRecordingState(ctx, id, next)
	})
	if err != nil {
		return upstream("failed to update recording", err)
	}
	room.SetRecording(next)

	if in.Start {
		o.broadcast(id, sid, protocol.TypeRecordingStart, protocol.RecordingStarted{StartedBy: user.ID, StartedAt: now})
	} else {
		o.broadcast(id, sid, protocol.TypeRecordingStop, protocol.RecordingStopped{StoppedBy: user.ID, StoppedAt: now})
	}
	log.Info().Str("module", "orch").Str("meeting", string(id)).Str("user", string(user.ID)).Bool("recording", in.Start).Msg("recording state changed")
	return nil
}
