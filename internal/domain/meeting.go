package domain

import (
	"errors"
	"time"
)

var ErrMeetingNotFound = errors.New("meeting not found")

type MeetingID string

type Role string

const (
	RoleHost          Role = "host"
	RoleCoHost        Role = "co-host"
	RoleParticipant   Role = "participant"
	RoleTemporaryHost Role = "temporary-host"
)

type MeetingStatus string

const (
	StatusScheduled  MeetingStatus = "scheduled"
	StatusInProgress MeetingStatus = "in-progress"
	StatusRecording  MeetingStatus = "recording"
	StatusCompleted  MeetingStatus = "completed"
	StatusCancelled  MeetingStatus = "cancelled"
)

type Participant struct {
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// MeetingSummary is what the meeting store tells us about a meeting.
// The store stays the source of truth; we only read it.
type MeetingSummary struct {
	ID               MeetingID      `json:"id"`
	Title            string         `json:"title"`
	HostID           UserID         `json:"host"`
	OriginalHostID   UserID         `json:"originalHost,omitempty"`
	Status           MeetingStatus  `json:"status"`
	RecordingAllowed bool           `json:"recordingAllowed"`
	Participants     []Participant  `json:"participants"`
	Recording        RecordingState `json:"recording"`
}

func (m *MeetingSummary) Ended() bool {
	return m.Status == StatusCompleted || m.Status == StatusCancelled
}

func (m *MeetingSummary) Participant(uid UserID) (Participant, bool) {
	for _, p := range m.Participants {
		if p.UserID == uid {
			return p, true
		}
	}
	return Participant{}, false
}

// RecordingState mirrors the persisted recording flags of a meeting.
type RecordingState struct {
	IsRecording bool       `json:"isRecording"`
	StartedBy   UserID     `json:"startedBy,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	StoppedAt   *time.Time `json:"stoppedAt,omitempty"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	MeetingID  MeetingID `json:"-"`
	SenderID   UserID    `json:"sender"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
