package core

import (
	"sort"
	"sync"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManager is the in-memory RoomRegistry.
// Lock order is always manager then room. Membership changes hold the
// manager write lock so room creation and deletion are atomic with the
// add/remove that causes them.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.MeetingID]*roomImpl
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.MeetingID]*roomImpl)}
}

func (rm *RoomManager) AddMember(id domain.MeetingID, ms MemberSession) AddResult {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	var res AddResult
	room, ok := rm.rooms[id]
	if !ok {
		room = newRoom(id)
		rm.rooms[id] = room
		res.Created = true
		log.Info().Str("module", "core.registry").Str("meeting", string(id)).Msg("room created")
	}
	res.Added, res.Replaced = room.addMember(ms)
	return res
}

func (rm *RoomManager) RemoveMember(id domain.MeetingID, sid SessionID) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	room, ok := rm.rooms[id]
	if !ok {
		return false
	}
	removed := room.removeMember(sid)
	if room.MemberCount() == 0 {
		delete(rm.rooms, id)
		log.Info().Str("module", "core.registry").Str("meeting", string(id)).Msg("room destroyed")
	}
	return removed
}

func (rm *RoomManager) Room(id domain.MeetingID) (RoomService, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[id]
	if !ok {
		return nil, false
	}
	return room, true
}

func (rm *RoomManager) MembersOf(id domain.MeetingID) []SessionID {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[id]
	if !ok {
		return nil
	}
	sessions := room.Sessions()
	out := make([]SessionID, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID())
	}
	return out
}

func (rm *RoomManager) FindMemberByUser(id domain.MeetingID, uid domain.UserID) (MemberSession, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[id]
	if !ok {
		return nil, false
	}
	return room.FindByUser(uid)
}

// Broadcast holds the manager read lock for the whole fan-out so no
// membership change can interleave with it.
func (rm *RoomManager) Broadcast(id domain.MeetingID, from SessionID, data Frame) PublishResult {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[id]
	if !ok {
		return PublishResult{}
	}
	return room.Broadcast(from, data)
}

func (rm *RoomManager) SendTo(id domain.MeetingID, sid SessionID, data Frame) error {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[id]
	if !ok {
		return ErrNotMember
	}
	return room.SendTo(sid, data)
}

func (rm *RoomManager) List() []RoomInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	out := make([]RoomInfo, 0, len(rm.rooms))
	for id, r := range rm.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (rm *RoomManager) Snapshot() []RoomSnapshot {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	out := make([]RoomSnapshot, 0, len(rm.rooms))
	for id, r := range rm.rooms {
		members := r.MembersSnapshot()
		out = append(out, RoomSnapshot{ID: id, MemberCount: len(members), Participants: members})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (rm *RoomManager) StopRoom(id domain.MeetingID) []MemberSession {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	room, ok := rm.rooms[id]
	if !ok {
		return nil
	}
	delete(rm.rooms, id)
	log.Info().Str("module", "core.registry").Str("meeting", string(id)).Msg("room stopped")
	return room.Sessions()
}

var _ RoomRegistry = (*RoomManager)(nil)
