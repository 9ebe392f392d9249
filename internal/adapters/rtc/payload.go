package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/Meet/internal/protocol"
	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"
)

var (
	ErrBadDescription = errors.New("invalid session description")
	ErrBadCandidate   = errors.New("invalid ice candidate")
)

// ValidateRelay checks that a relayed payload has the shape browsers
// expect. The payload itself is forwarded untouched.
func ValidateRelay(r protocol.Relay) error {
	switch r.Kind() {
	case protocol.TypeRTCOffer:
		return validateDescription(r.Payload, webrtc.SDPTypeOffer)
	case protocol.TypeRTCAnswer:
		return validateDescription(r.Payload, webrtc.SDPTypeAnswer, webrtc.SDPTypePranswer)
	case protocol.TypeRTCICECandidate:
		return validateCandidate(r.Payload)
	default:
		return fmt.Errorf("not a relay type: %s", r.Kind())
	}
}

type description struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

func validateDescription(raw json.RawMessage, allowed ...webrtc.SDPType) error {
	var d description
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("%w: %v", ErrBadDescription, err)
	}
	typ := webrtc.NewSDPType(d.Type)
	ok := false
	for _, a := range allowed {
		if typ == a {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: unexpected type %q", ErrBadDescription, d.Type)
	}
	if !strings.HasPrefix(d.SDP, "v=") {
		return fmt.Errorf("%w: missing sdp", ErrBadDescription)
	}
	var parsed sdp.SessionDescription
	if err := parsed.Unmarshal([]byte(d.SDP)); err != nil {
		return fmt.Errorf("%w: %v", ErrBadDescription, err)
	}
	return nil
}

func validateCandidate(raw json.RawMessage) error {
	var c webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("%w: %v", ErrBadCandidate, err)
	}
	// An empty candidate marks the end of gathering.
	if c.Candidate == "" {
		return nil
	}
	if !strings.HasPrefix(c.Candidate, "candidate:") {
		return fmt.Errorf("%w: %q", ErrBadCandidate, c.Candidate)
	}
	if c.SDPMid == nil && c.SDPMLineIndex == nil {
		return fmt.Errorf("%w: sdpMid or sdpMLineIndex is required", ErrBadCandidate)
	}
	return nil
}
