package signal

import (
	"context"
	"fmt"

	"github.com/dkeye/Meet/internal/adapters/rtc"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleFrame decodes and dispatches one inbound frame. Any failure is
// answered with an error envelope; the connection stays open.
func (ctl *SignalWSController) handleFrame(ctx context.Context, sid core.SessionID, uid domain.UserID, c *WsSignalConn, data []byte) {
	var meeting domain.MeetingID
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("sid", string(sid)).Interface("panic", r).Msg("handler panic")
			ctl.replyError(c, meeting, protocol.Upstream("internal error", fmt.Errorf("panic: %v", r)))
		}
	}()

	in, err := protocol.Decode(data)
	if err != nil {
		re := protocol.AsRoomError(err)
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("code", string(re.Code)).Msg("bad frame")
		ctl.replyError(c, "", re)
		return
	}
	meeting = in.Meeting()

	if err := ctl.dispatch(ctx, sid, uid, in); err != nil {
		re := protocol.AsRoomError(err)
		ev := log.Warn()
		if re.Code == protocol.CodeUpstreamFailure {
			ev = log.Error()
		}
		ev.Err(err).Str("module", "signal").Str("sid", string(sid)).Str("user", string(uid)).
			Str("meeting", string(meeting)).Str("type", string(in.Kind())).Str("code", string(re.Code)).Msg("handler failed")
		ctl.replyError(c, meeting, re)
	}
}

func (ctl *SignalWSController) dispatch(ctx context.Context, sid core.SessionID, uid domain.UserID, in protocol.Inbound) error {
	switch m := in.(type) {
	case protocol.JoinMeeting:
		return ctl.Orch.Join(ctx, sid, m.Meeting())
	case protocol.LeaveMeeting:
		ctl.Orch.Leave(ctx, sid)
		return nil
	case protocol.ChatMessage:
		if err := ctl.allow(uid); err != nil {
			return err
		}
		return ctl.Orch.Chat(ctx, sid, m)
	case protocol.Relay:
		if err := rtc.ValidateRelay(m); err != nil {
			return &protocol.RoomError{Code: protocol.CodeBadPayload, Message: "invalid " + m.PayloadKey(), Err: err}
		}
		return ctl.Orch.Relay(sid, m)
	case protocol.RaiseHand:
		if err := ctl.allow(uid); err != nil {
			return err
		}
		return ctl.Orch.Presence(sid, m)
	case protocol.ScreenShare, protocol.Mute:
		// State transitions; peers must always see the latest one.
		return ctl.Orch.Presence(sid, m)
	case protocol.Recording:
		return ctl.Orch.Recording(ctx, sid, m)
	case protocol.EndMeeting:
		return ctl.Orch.EndMeeting(ctx, sid, m.Meeting())
	case protocol.Ping:
		ctl.Orch.Ping(sid)
		return nil
	case protocol.ClientError:
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("user", string(uid)).Str("message", m.Message).Msg("client reported error")
		return nil
	default:
		return protocol.NewError(protocol.CodeUnknownType, "unsupported message type: "+string(in.Kind()))
	}
}

func (ctl *SignalWSController) allow(uid domain.UserID) error {
	if ctl.limiter.Allow(uid) {
		return nil
	}
	return protocol.NewError(protocol.CodeRateLimited, "too many messages, slow down")
}

func (ctl *SignalWSController) replyError(c *WsSignalConn, id domain.MeetingID, re *protocol.RoomError) {
	if err := c.TrySend(protocol.EncodeError(id, re)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("code", string(re.Code)).Msg("error reply dropped")
	}
}
