package protocol

import (
	"errors"
	"fmt"
)

// Code is the wire identifier of a RoomError.
type Code string

const (
	CodeBadPayload          Code = "bad_payload"
	CodeUnknownType         Code = "unknown_type"
	CodeNotFound            Code = "not_found"
	CodeForbidden           Code = "forbidden"
	CodeMeetingEnded        Code = "meeting_ended"
	CodeNotInRoom           Code = "not_in_room"
	CodeNotHost             Code = "not_host"
	CodeEmptyMessage        Code = "empty_message"
	CodeMessageTooLong      Code = "message_too_long"
	CodeRateLimited         Code = "rate_limited"
	CodeRecordingNotAllowed Code = "recording_not_allowed"
	CodeRecordingState      Code = "recording_state"
	CodeUpstreamFailure     Code = "upstream_failure"
)

// RoomError is a recoverable, message-local failure. It is answered with an
// error envelope to the sender only; the connection stays open.
type RoomError struct {
	Code    Code
	Message string
	Err     error
}

func (e *RoomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RoomError) Unwrap() error { return e.Err }

func NewError(code Code, msg string) *RoomError {
	return &RoomError{Code: code, Message: msg}
}

// Upstream wraps a meeting store failure.
func Upstream(msg string, err error) *RoomError {
	return &RoomError{Code: CodeUpstreamFailure, Message: msg, Err: err}
}

// AsRoomError classifies any handler error. Unknown errors become
// upstream_failure so nothing internal leaks to clients.
func AsRoomError(err error) *RoomError {
	var re *RoomError
	if errors.As(err, &re) {
		return re
	}
	return Upstream("internal error", err)
}
