package core

import (
	"context"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

//go:generate mockgen -source=gateway_iface.go -destination=mocks/mock_gateway.go -package=mocks

// MeetingGateway is the boundary to the external meeting store. It decides
// who may join and who is host; the signaling core only asks.
// Implementations must honour ctx cancellation.
type MeetingGateway interface {
	// GetMeeting returns domain.ErrMeetingNotFound for unknown ids.
	GetMeeting(ctx context.Context, id domain.MeetingID) (*domain.MeetingSummary, error)
	IsParticipant(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error)
	IsHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error)

	AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error
	SetRecordingState(ctx context.Context, id domain.MeetingID, st domain.RecordingState) error
	EndMeeting(ctx context.Context, id domain.MeetingID, at time.Time) error

	// TransferHost promotes to as temporary host while from is away.
	TransferHost(ctx context.Context, id domain.MeetingID, from, to domain.UserID) error
	// RestoreHost gives the host role back to uid if uid is the original host.
	// It reports the demoted temporary host, if there was one.
	RestoreHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (domain.Participant, bool, error)
}
