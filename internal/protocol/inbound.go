package protocol

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/Meet/internal/domain"
)

// Type is the discriminator of an envelope.
type Type string

const (
	TypeJoinMeeting      Type = "join-meeting"
	TypeLeaveMeeting     Type = "leave-meeting"
	TypeChatMessage      Type = "chat-message"
	TypeRTCOffer         Type = "rtc-offer"
	TypeRTCAnswer        Type = "rtc-answer"
	TypeRTCICECandidate  Type = "rtc-ice-candidate"
	TypeScreenShareStart Type = "screen-share-start"
	TypeScreenShareStop  Type = "screen-share-stop"
	TypeMuteAudio        Type = "mute-audio"
	TypeMuteVideo        Type = "mute-video"
	TypeRaiseHand        Type = "raise-hand"
	TypeRecordingStart   Type = "recording-start"
	TypeRecordingStop    Type = "recording-stop"
	TypeEndMeeting       Type = "end-meeting"
	TypePing             Type = "ping"
	TypeError            Type = "error"
	TypeMeetingJoined    Type = "meeting-joined"
	TypeMeetingLeft      Type = "meeting-left"
	TypeUserJoined       Type = "user-joined"
	TypeUserLeft         Type = "user-left"
	TypeMeetingEnded     Type = "meeting-ended"
	TypeMeetingEndedAck  Type = "meeting-ended-confirmation"
	TypeHostTransferred  Type = "host-transferred"
	TypeHostRestored     Type = "host-restored"
	TypeSessionReplaced  Type = "session-replaced"
	TypePong             Type = "pong"
)

// Envelope is the frame shape on the wire in both directions.
type Envelope struct {
	Type      Type             `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId,omitempty"`
	Data      json.RawMessage  `json:"data,omitempty"`
}

// Inbound is the closed set of messages a client may send.
type Inbound interface {
	Kind() Type
	Meeting() domain.MeetingID
	inbound()
}

type header struct {
	kind      Type
	meetingID domain.MeetingID
}

func (h header) Kind() Type                { return h.kind }
func (h header) Meeting() domain.MeetingID { return h.meetingID }
func (header) inbound()                    {}

type JoinMeeting struct{ header }

type LeaveMeeting struct{ header }

type ChatMessage struct {
	header
	Message string
}

// Relay is a targeted rtc-offer, rtc-answer or rtc-ice-candidate.
// Payload is forwarded untouched.
type Relay struct {
	header
	Target  domain.UserID
	Payload json.RawMessage
}

// PayloadKey is the data field that carries Payload for this relay kind.
func (r Relay) PayloadKey() string {
	switch r.Kind() {
	case TypeRTCOffer:
		return "offer"
	case TypeRTCAnswer:
		return "answer"
	default:
		return "candidate"
	}
}

type ScreenShare struct {
	header
	Active bool
}

type Mute struct {
	header
	Muted bool
}

type RaiseHand struct {
	header
	Raised bool
}

type Recording struct {
	header
	Start bool
}

type EndMeeting struct{ header }

type Ping struct{ header }

// ClientError is an error the client reports about itself. It is only logged.
type ClientError struct {
	header
	Message string
}

type chatData struct {
	Message string `json:"message"`
}

type relayData struct {
	TargetUserID domain.UserID   `json:"targetUserId"`
	Offer        json.RawMessage `json:"offer"`
	Answer       json.RawMessage `json:"answer"`
	Candidate    json.RawMessage `json:"candidate"`
}

type muteData struct {
	Muted *bool `json:"muted"`
}

type raiseHandData struct {
	Raised *bool `json:"raised"`
}

type errorData struct {
	Message string `json:"message"`
}

// Decode parses one inbound frame. Failures are *RoomError with
// bad_payload or unknown_type.
func Decode(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &RoomError{Code: CodeBadPayload, Message: "invalid message format", Err: err}
	}
	h := header{kind: env.Type, meetingID: domain.MeetingID(strings.TrimSpace(string(env.MeetingID)))}

	switch env.Type {
	case TypeJoinMeeting:
		if h.meetingID == "" {
			return nil, NewError(CodeBadPayload, "meetingId is required")
		}
		return JoinMeeting{h}, nil
	case TypeLeaveMeeting:
		return LeaveMeeting{h}, nil
	case TypeChatMessage:
		var d chatData
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		return ChatMessage{header: h, Message: d.Message}, nil
	case TypeRTCOffer, TypeRTCAnswer, TypeRTCICECandidate:
		var d relayData
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		if d.TargetUserID == "" {
			return nil, NewError(CodeBadPayload, "targetUserId is required")
		}
		r := Relay{header: h, Target: d.TargetUserID}
		switch env.Type {
		case TypeRTCOffer:
			r.Payload = d.Offer
		case TypeRTCAnswer:
			r.Payload = d.Answer
		default:
			r.Payload = d.Candidate
		}
		if len(r.Payload) == 0 {
			return nil, NewError(CodeBadPayload, r.PayloadKey()+" is required")
		}
		return r, nil
	case TypeScreenShareStart, TypeScreenShareStop:
		return ScreenShare{header: h, Active: env.Type == TypeScreenShareStart}, nil
	case TypeMuteAudio, TypeMuteVideo:
		var d muteData
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		if d.Muted == nil {
			return nil, NewError(CodeBadPayload, "muted is required")
		}
		return Mute{header: h, Muted: *d.Muted}, nil
	case TypeRaiseHand:
		var d raiseHandData
		if len(env.Data) > 0 {
			if err := decodeData(env.Data, &d); err != nil {
				return nil, err
			}
		}
		raised := true
		if d.Raised != nil {
			raised = *d.Raised
		}
		return RaiseHand{header: h, Raised: raised}, nil
	case TypeRecordingStart, TypeRecordingStop:
		return Recording{header: h, Start: env.Type == TypeRecordingStart}, nil
	case TypeEndMeeting:
		return EndMeeting{h}, nil
	case TypePing:
		return Ping{h}, nil
	case TypeError:
		var d errorData
		_ = json.Unmarshal(env.Data, &d)
		return ClientError{header: h, Message: d.Message}, nil
	case "":
		return nil, NewError(CodeBadPayload, "type is required")
	default:
		return nil, NewError(CodeUnknownType, "unknown message type: "+string(env.Type))
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return NewError(CodeBadPayload, "data is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &RoomError{Code: CodeBadPayload, Message: "invalid data", Err: err}
	}
	return nil
}
