package core

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrNotMember = errors.New("not a room member")

type roomMember struct {
	session  MemberSession
	seq      uint64
	joinedAt time.Time
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id     domain.MeetingID
	mu     sync.RWMutex
	bySID  map[SessionID]roomMember
	byUser map[domain.UserID]SessionID
	seq    uint64

	recording domain.RecordingState
}

func newRoom(id domain.MeetingID) *roomImpl {
	return &roomImpl{
		id:     id,
		bySID:  make(map[SessionID]roomMember),
		byUser: make(map[domain.UserID]SessionID),
	}
}

func (r *roomImpl) ID() domain.MeetingID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

// addMember inserts ms. A different session of the same user is evicted
// and returned so one user never shows up twice in a room.
func (r *roomImpl) addMember(ms MemberSession) (added bool, replaced MemberSession) {
	sid := ms.ID()
	u := ms.Meta().User.ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; ok {
		return false, nil
	}
	if prev, ok := r.byUser[u]; ok && prev != sid {
		replaced = r.bySID[prev].session
		delete(r.bySID, prev)
		log.Info().Str("module", "core.room").Str("meeting", string(r.id)).Str("sid", string(prev)).Str("user", string(u)).Msg("member replaced")
	}
	r.seq++
	r.bySID[sid] = roomMember{session: ms, seq: r.seq, joinedAt: time.Now()}
	r.byUser[u] = sid
	log.Info().Str("module", "core.room").Str("meeting", string(r.id)).Str("sid", string(sid)).Str("user", string(u)).Msg("member added")
	return true, replaced
}

func (r *roomImpl) removeMember(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.bySID[sid]
	if !ok {
		return false
	}
	u := m.session.Meta().User.ID
	if r.byUser[u] == sid {
		delete(r.byUser, u)
	}
	delete(r.bySID, sid)
	log.Info().Str("module", "core.room").Str("meeting", string(r.id)).Str("sid", string(sid)).Msg("member removed")
	return true
}

func (r *roomImpl) ordered() []roomMember {
	out := make([]roomMember, 0, len(r.bySID))
	for _, m := range r.bySID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (r *roomImpl) Sessions() []MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.ordered()
	out := make([]MemberSession, 0, len(members))
	for _, m := range members {
		out = append(out, m.session)
	}
	return out
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.ordered()
	out := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		u := m.session.Meta().User
		out = append(out, MemberDTO{ID: u.ID, Name: u.Name, Email: u.Email, JoinedAt: m.joinedAt})
	}
	return out
}

func (r *roomImpl) FindByUser(uid domain.UserID) (MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byUser[uid]
	if !ok {
		return nil, false
	}
	return r.bySID[sid].session, true
}

func (r *roomImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		if sid == from {
			continue
		}
		if err := m.session.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m.session)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) SendTo(sid SessionID, data Frame) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.bySID[sid]
	if !ok {
		return ErrNotMember
	}
	return m.session.Signal().TrySend(data)
}

func (r *roomImpl) Recording() domain.RecordingState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recording
}

func (r *roomImpl) SetRecording(st domain.RecordingState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = st
}
