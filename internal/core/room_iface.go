package core

import (
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"userId"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	JoinedAt time.Time     `json:"joinedAt"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
// Membership is changed only through RoomRegistry.
type RoomService interface {
	ID() domain.MeetingID
	MemberCount() int
	// MembersSnapshot lists members in join order.
	MembersSnapshot() []MemberDTO
	Sessions() []MemberSession
	FindByUser(uid domain.UserID) (MemberSession, bool)

	Broadcast(from SessionID, data Frame) PublishResult
	SendTo(sid SessionID, data Frame) error

	Recording() domain.RecordingState
	SetRecording(st domain.RecordingState)
}

type RoomInfo struct {
	ID          domain.MeetingID `json:"meetingId"`
	MemberCount int              `json:"participantCount"`
}

type RoomSnapshot struct {
	ID           domain.MeetingID `json:"meetingId"`
	MemberCount  int              `json:"participantCount"`
	Participants []MemberDTO      `json:"participants"`
}

// AddResult describes what AddMember changed.
type AddResult struct {
	Added   bool
	Created bool
	// Replaced is the previous session of the same user in this room,
	// already removed from the room.
	Replaced MemberSession
}

// RoomRegistry maps meeting ids to live rooms. A room exists only while
// it has members: it is created by the first AddMember and dropped by
// the RemoveMember that empties it.
type RoomRegistry interface {
	AddMember(id domain.MeetingID, ms MemberSession) AddResult
	// RemoveMember is a no-op for unknown rooms or sessions.
	RemoveMember(id domain.MeetingID, sid SessionID) bool
	MembersOf(id domain.MeetingID) []SessionID
	FindMemberByUser(id domain.MeetingID, uid domain.UserID) (MemberSession, bool)
	Room(id domain.MeetingID) (RoomService, bool)

	Broadcast(id domain.MeetingID, from SessionID, data Frame) PublishResult
	SendTo(id domain.MeetingID, sid SessionID, data Frame) error

	List() []RoomInfo
	Snapshot() []RoomSnapshot
	// StopRoom drops the room and hands back whoever was still in it.
	StopRoom(id domain.MeetingID) []MemberSession
}
