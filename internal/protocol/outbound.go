package protocol

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/pion/webrtc/v4"
)

type MeetingInfo struct {
	ID    domain.MeetingID `json:"id"`
	Title string           `json:"title"`
	Host  domain.UserID    `json:"host"`
}

type MeetingJoined struct {
	Meeting       MeetingInfo           `json:"meeting"`
	ExistingUsers []domain.Identity     `json:"existingUsers"`
	Recording     domain.RecordingState `json:"recording"`
	IceServers    []webrtc.ICEServer    `json:"iceServers,omitempty"`
}

type UserJoined struct {
	domain.Identity
	IsHostRestored bool `json:"isHostRestored"`
}

type UserRef struct {
	UserID domain.UserID `json:"userId"`
	Name   string        `json:"name"`
}

type Muted struct {
	UserID domain.UserID `json:"userId"`
	Muted  bool          `json:"muted"`
}

type HandRaised struct {
	UserID domain.UserID `json:"userId"`
	Name   string        `json:"name"`
	Raised bool          `json:"raised"`
}

type RecordingStarted struct {
	StartedBy domain.UserID `json:"startedBy"`
	StartedAt time.Time     `json:"startedAt"`
}

type RecordingStopped struct {
	StoppedBy domain.UserID `json:"stoppedBy"`
	StoppedAt time.Time     `json:"stoppedAt"`
}

type MeetingEnded struct {
	Message string `json:"message"`
	EndedBy string `json:"endedBy"`
}

type HostTransferred struct {
	PreviousHost UserRef `json:"previousHost"`
	NewHost      UserRef `json:"newHost"`
}

type HostRestored struct {
	OriginalHost          UserRef `json:"originalHost"`
	PreviousTemporaryHost UserRef `json:"previousTemporaryHost"`
}

type Notice struct {
	Message string `json:"message"`
}

type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Encode builds an outbound frame.
func Encode(t Type, id domain.MeetingID, data any) ([]byte, error) {
	env := struct {
		Type      Type             `json:"type"`
		MeetingID domain.MeetingID `json:"meetingId,omitempty"`
		Data      any              `json:"data,omitempty"`
	}{t, id, data}
	return json.Marshal(env)
}

// EncodeRelay forwards a targeted payload with the sender substituted in.
func EncodeRelay(r Relay, from domain.UserID) ([]byte, error) {
	return Encode(r.Kind(), r.Meeting(), map[string]any{
		"fromUserId": from,
		r.PayloadKey(): r.Payload,
	})
}

func EncodeError(id domain.MeetingID, err *RoomError) []byte {
	b, mErr := Encode(TypeError, id, ErrorBody{Code: err.Code, Message: err.Message})
	if mErr != nil {
		return []byte(`{"type":"error","data":{"code":"upstream_failure","message":"internal error"}}`)
	}
	return b
}
