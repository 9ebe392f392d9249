package core

import "github.com/dkeye/Meet/internal/domain"

// SessionID identifies one physical signaling connection.
type SessionID string

// NoSession is used where a broadcast should not exclude anybody.
const NoSession SessionID = ""

// MemberSession binds domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	ID() SessionID
	Meta() *domain.Member
	Signal() SignalConnection
}
