package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store is the gorm-backed meeting and user store.
type Store struct {
	db *gorm.DB
}

var _ core.MeetingGateway = (*Store)(nil)

func Open(cfg config.StoreConfig) (*Store, error) {
	var dial gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dial = postgres.Open(cfg.DSN)
	case "sqlite":
		dial = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("invalid store type %q", cfg.Type)
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}
	if cfg.Type == "sqlite" {
		// sqlite has a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&User{}, &Meeting{}, &Participant{}, &ChatMessage{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("module", "store").Str("type", cfg.Type).Msg("store ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) FindUser(ctx context.Context, id domain.UserID) (domain.Identity, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Identity{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.NewIdentity(u.ID, u.Name, u.Email)
}

func (s *Store) meeting(ctx context.Context, tx *gorm.DB, id domain.MeetingID) (*Meeting, error) {
	var m Meeting
	err := tx.WithContext(ctx).Preload("Participants").First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetMeeting(ctx context.Context, id domain.MeetingID) (*domain.MeetingSummary, error) {
	m, err := s.meeting(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return m.summary(), nil
}

// IsParticipant is true for the host and for anyone on the participant list.
func (s *Store) IsParticipant(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error) {
	m, err := s.meeting(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	if m.HostID == string(uid) {
		return true, nil
	}
	_, ok := m.summary().Participant(uid)
	return ok, nil
}

// IsHost is true for the meeting host and for a temporary host standing in.
func (s *Store) IsHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error) {
	m, err := s.meeting(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	if m.HostID == string(uid) {
		return true, nil
	}
	p, ok := m.summary().Participant(uid)
	return ok && p.Role == domain.RoleTemporaryHost, nil
}

func (s *Store) AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	row := ChatMessage{
		ID:         msg.ID,
		MeetingID:  string(msg.MeetingID),
		SenderID:   string(msg.SenderID),
		SenderName: msg.SenderName,
		Message:    msg.Message,
		Timestamp:  msg.Timestamp,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) ChatHistory(ctx context.Context, id domain.MeetingID) ([]domain.ChatMessage, error) {
	rows := make([]ChatMessage, 0)
	err := s.db.WithContext(ctx).Where("meeting_id = ?", string(id)).Order("timestamp ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ChatMessage{
			ID:         r.ID,
			MeetingID:  domain.MeetingID(r.MeetingID),
			SenderID:   domain.UserID(r.SenderID),
			SenderName: r.SenderName,
			Message:    r.Message,
			Timestamp:  r.Timestamp,
		})
	}
	return out, nil
}

func (s *Store) SetRecordingState(ctx context.Context, id domain.MeetingID, st domain.RecordingState) error {
	updates := map[string]any{"is_recording": st.IsRecording}
	if st.IsRecording {
		updates["status"] = string(domain.StatusRecording)
		updates["recording_started_by"] = string(st.StartedBy)
		updates["recording_started_at"] = st.StartedAt
	} else {
		updates["status"] = string(domain.StatusInProgress)
		updates["recording_stopped_at"] = st.StoppedAt
	}
	res := s.db.WithContext(ctx).Model(&Meeting{}).Where("id = ?", string(id)).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func (s *Store) EndMeeting(ctx context.Context, id domain.MeetingID, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&Meeting{}).Where("id = ?", string(id)).Updates(map[string]any{
		"status":       string(domain.StatusCompleted),
		"ended_at":     at,
		"is_recording": false,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func (s *Store) TransferHost(ctx context.Context, id domain.MeetingID, from, to domain.UserID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.meeting(ctx, tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&Participant{}).
			Where("meeting_id = ? AND user_id = ?", m.ID, string(to)).
			Updates(map[string]any{"role": string(domain.RoleTemporaryHost), "promoted_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("transfer host to %s: %w", to, domain.ErrUserNotFound)
		}
		return tx.Model(&Meeting{}).Where("id = ?", m.ID).Update("original_host_id", string(from)).Error
	})
}

func (s *Store) RestoreHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (domain.Participant, bool, error) {
	var demoted domain.Participant
	var restored bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.meeting(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.OriginalHostID == "" || m.OriginalHostID != string(uid) {
			return nil
		}
		for _, p := range m.Participants {
			if p.Role != string(domain.RoleTemporaryHost) {
				continue
			}
			err := tx.Model(&Participant{}).Where("id = ?", p.ID).
				Updates(map[string]any{"role": string(domain.RoleParticipant), "promoted_at": nil}).Error
			if err != nil {
				return err
			}
			demoted = domain.Participant{UserID: domain.UserID(p.UserID), Name: p.Name, Email: p.Email, Role: domain.RoleParticipant}
			restored = true
		}
		return tx.Model(&Meeting{}).Where("id = ?", m.ID).Update("original_host_id", "").Error
	})
	if err != nil {
		return domain.Participant{}, false, err
	}
	return demoted, restored, nil
}

func (s *Store) CreateUser(ctx context.Context, name, email string) (User, error) {
	u := User{ID: uuid.NewString(), Name: name, Email: email}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) CreateMeeting(ctx context.Context, title string, host domain.Identity, recordingAllowed bool) (Meeting, error) {
	m := Meeting{
		ID:               uuid.NewString(),
		Title:            title,
		HostID:           string(host.ID),
		Status:           string(domain.StatusScheduled),
		RecordingAllowed: recordingAllowed,
		Participants: []Participant{{
			UserID: string(host.ID),
			Name:   host.Name,
			Email:  host.Email,
			Role:   string(domain.RoleHost),
		}},
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return Meeting{}, err
	}
	return m, nil
}

// AddParticipant is idempotent; a second call updates the role.
func (s *Store) AddParticipant(ctx context.Context, id domain.MeetingID, user domain.Identity, role domain.Role) error {
	if _, err := s.meeting(ctx, s.db, id); err != nil {
		return err
	}
	p := Participant{
		MeetingID: string(id),
		UserID:    string(user.ID),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(role),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "name", "email"}),
	}).Create(&p).Error
}
