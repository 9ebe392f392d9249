package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

var (
	errClosed = errors.New("connection closed")
	errFull   = errors.New("backpressure")
)

type fakeConn struct {
	mu      sync.Mutex
	frames  []core.Frame
	closed  bool
	full    bool
	onClose func()
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	if c.full {
		return errFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	first := !c.closed
	c.closed = true
	hook := c.onClose
	c.mu.Unlock()
	if first && hook != nil {
		hook()
	}
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type envelope struct {
	Type      string         `json:"type"`
	MeetingID string         `json:"meetingId"`
	Data      map[string]any `json:"data"`
}

func (c *fakeConn) envelopes() []envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]envelope, 0, len(c.frames))
	for _, f := range c.frames {
		var e envelope
		if err := json.Unmarshal(f, &e); err == nil {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) types() []string {
	envs := c.envelopes()
	out := make([]string, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Type)
	}
	return out
}

func (c *fakeConn) ofType(t string) []envelope {
	var out []envelope
	for _, e := range c.envelopes() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// fakeGateway is an in-memory meeting store.
type fakeGateway struct {
	mu        sync.Mutex
	meetings  map[domain.MeetingID]*domain.MeetingSummary
	chats     []domain.ChatMessage
	states    []domain.RecordingState
	chatErr   error
	lookupErr error
	delay     time.Duration
}

func newFakeGateway(meetings ...*domain.MeetingSummary) *fakeGateway {
	g := &fakeGateway{meetings: make(map[domain.MeetingID]*domain.MeetingSummary)}
	for _, m := range meetings {
		g.meetings[m.ID] = m
	}
	return g
}

func (g *fakeGateway) find(id domain.MeetingID) (*domain.MeetingSummary, error) {
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lookupErr != nil {
		return nil, g.lookupErr
	}
	m, ok := g.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	cp := *m
	cp.Participants = append([]domain.Participant(nil), m.Participants...)
	return &cp, nil
}

func (g *fakeGateway) GetMeeting(ctx context.Context, id domain.MeetingID) (*domain.MeetingSummary, error) {
	return g.find(id)
}

func (g *fakeGateway) IsParticipant(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error) {
	m, err := g.find(id)
	if err != nil {
		return false, err
	}
	_, ok := m.Participant(uid)
	return ok || m.HostID == uid, nil
}

func (g *fakeGateway) IsHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (bool, error) {
	m, err := g.find(id)
	if err != nil {
		return false, err
	}
	p, ok := m.Participant(uid)
	return m.HostID == uid || (ok && p.Role == domain.RoleTemporaryHost), nil
}

func (g *fakeGateway) AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chatErr != nil {
		return g.chatErr
	}
	g.chats = append(g.chats, msg)
	return nil
}

func (g *fakeGateway) SetRecordingState(ctx context.Context, id domain.MeetingID, st domain.RecordingState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	m.Recording = st
	g.states = append(g.states, st)
	return nil
}

func (g *fakeGateway) EndMeeting(ctx context.Context, id domain.MeetingID, at time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	m.Status = domain.StatusCompleted
	return nil
}

func (g *fakeGateway) TransferHost(ctx context.Context, id domain.MeetingID, from, to domain.UserID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.meetings[id]
	for i := range m.Participants {
		if m.Participants[i].UserID == to {
			m.Participants[i].Role = domain.RoleTemporaryHost
		}
	}
	m.OriginalHostID = from
	return nil
}

func (g *fakeGateway) RestoreHost(ctx context.Context, id domain.MeetingID, uid domain.UserID) (domain.Participant, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m := g.meetings[id]
	if m.OriginalHostID != uid {
		return domain.Participant{}, false, nil
	}
	m.OriginalHostID = ""
	for i := range m.Participants {
		if m.Participants[i].Role == domain.RoleTemporaryHost {
			m.Participants[i].Role = domain.RoleParticipant
			return m.Participants[i], true, nil
		}
	}
	return domain.Participant{}, false, nil
}

func (g *fakeGateway) lastState() domain.RecordingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.states) == 0 {
		return domain.RecordingState{}
	}
	return g.states[len(g.states)-1]
}

func (g *fakeGateway) chatLog() []domain.ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.ChatMessage(nil), g.chats...)
}
