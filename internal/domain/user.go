// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 128
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
	ErrUserNotFound  = errors.New("user not found")
)

type UserID string

// Identity is who a connection belongs to. It never changes for the
// lifetime of a connection.
type Identity struct {
	ID    UserID `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(id, name, email string) (Identity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Identity{}, ErrUserIDTooLong
	}
	if len(name) > MaxUsernameLen {
		name = name[:MaxUsernameLen]
	}
	if name == "" {
		name = email
	}
	return Identity{ID: UserID(id), Name: name, Email: email}, nil
}
