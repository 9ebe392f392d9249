package store

import (
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

type User struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:128"`
	Email     string `gorm:"uniqueIndex;size:255"`
	CreatedAt time.Time
}

type Meeting struct {
	ID             string `gorm:"primaryKey;size:64"`
	Title          string
	HostID         string `gorm:"index;size:64"`
	OriginalHostID string `gorm:"size:64"`
	Status         string `gorm:"size:32"`

	RecordingAllowed   bool
	IsRecording        bool
	RecordingStartedBy string `gorm:"size:64"`
	RecordingStartedAt *time.Time
	RecordingStoppedAt *time.Time

	EndedAt      *time.Time
	Participants []Participant `gorm:"foreignKey:MeetingID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Participant struct {
	ID         uint   `gorm:"primaryKey"`
	MeetingID  string `gorm:"uniqueIndex:idx_meeting_user;size:64"`
	UserID     string `gorm:"uniqueIndex:idx_meeting_user;size:64"`
	Name       string
	Email      string
	Role       string `gorm:"size:32"`
	PromotedAt *time.Time
}

type ChatMessage struct {
	ID         string `gorm:"primaryKey;size:64"`
	MeetingID  string `gorm:"index;size:64"`
	SenderID   string `gorm:"size:64"`
	SenderName string
	Message    string `gorm:"type:text"`
	Timestamp  time.Time
}

func (m *Meeting) summary() *domain.MeetingSummary {
	s := &domain.MeetingSummary{
		ID:               domain.MeetingID(m.ID),
		Title:            m.Title,
		HostID:           domain.UserID(m.HostID),
		OriginalHostID:   domain.UserID(m.OriginalHostID),
		Status:           domain.MeetingStatus(m.Status),
		RecordingAllowed: m.RecordingAllowed,
		Recording: domain.RecordingState{
			IsRecording: m.IsRecording,
			StartedBy:   domain.UserID(m.RecordingStartedBy),
			StartedAt:   m.RecordingStartedAt,
			StoppedAt:   m.RecordingStoppedAt,
		},
	}
	for _, p := range m.Participants {
		s.Participants = append(s.Participants, domain.Participant{
			UserID: domain.UserID(p.UserID),
			Name:   p.Name,
			Email:  p.Email,
			Role:   domain.Role(p.Role),
		})
	}
	return s
}
