package protocol

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			name: "join",
			raw:  `{"type":"join-meeting","meetingId":"m1"}`,
			want: JoinMeeting{header{TypeJoinMeeting, "m1"}},
		},
		{
			name: "leave without meeting id",
			raw:  `{"type":"leave-meeting"}`,
			want: LeaveMeeting{header{TypeLeaveMeeting, ""}},
		},
		{
			name: "chat",
			raw:  `{"type":"chat-message","meetingId":"m1","data":{"message":" hi "}}`,
			want: ChatMessage{header: header{TypeChatMessage, "m1"}, Message: " hi "},
		},
		{
			name: "offer",
			raw:  `{"type":"rtc-offer","meetingId":"m1","data":{"targetUserId":"b","offer":{"type":"offer","sdp":"v=0"}}}`,
			want: Relay{header: header{TypeRTCOffer, "m1"}, Target: "b", Payload: json.RawMessage(`{"type":"offer","sdp":"v=0"}`)},
		},
		{
			name: "candidate",
			raw:  `{"type":"rtc-ice-candidate","meetingId":"m1","data":{"targetUserId":"b","candidate":{"candidate":"c"}}}`,
			want: Relay{header: header{TypeRTCICECandidate, "m1"}, Target: "b", Payload: json.RawMessage(`{"candidate":"c"}`)},
		},
		{
			name: "screen share stop",
			raw:  `{"type":"screen-share-stop","meetingId":"m1"}`,
			want: ScreenShare{header: header{TypeScreenShareStop, "m1"}, Active: false},
		},
		{
			name: "mute video",
			raw:  `{"type":"mute-video","meetingId":"m1","data":{"muted":true}}`,
			want: Mute{header: header{TypeMuteVideo, "m1"}, Muted: true},
		},
		{
			name: "raise hand defaults to raised",
			raw:  `{"type":"raise-hand","meetingId":"m1"}`,
			want: RaiseHand{header: header{TypeRaiseHand, "m1"}, Raised: true},
		},
		{
			name: "lower hand",
			raw:  `{"type":"raise-hand","meetingId":"m1","data":{"raised":false}}`,
			want: RaiseHand{header: header{TypeRaiseHand, "m1"}, Raised: false},
		},
		{
			name: "recording start",
			raw:  `{"type":"recording-start","meetingId":"m1"}`,
			want: Recording{header: header{TypeRecordingStart, "m1"}, Start: true},
		},
		{
			name: "client error",
			raw:  `{"type":"error","data":{"message":"camera lost"}}`,
			want: ClientError{header: header{TypeError, ""}, Message: "camera lost"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code Code
	}{
		{name: "not json", raw: `hello`, code: CodeBadPayload},
		{name: "missing type", raw: `{"meetingId":"m1"}`, code: CodeBadPayload},
		{name: "unknown type", raw: `{"type":"teleport"}`, code: CodeUnknownType},
		{name: "join without meeting", raw: `{"type":"join-meeting"}`, code: CodeBadPayload},
		{name: "chat without data", raw: `{"type":"chat-message","meetingId":"m1"}`, code: CodeBadPayload},
		{name: "chat with wrong shape", raw: `{"type":"chat-message","meetingId":"m1","data":{"message":5}}`, code: CodeBadPayload},
		{name: "offer without target", raw: `{"type":"rtc-offer","meetingId":"m1","data":{"offer":{}}}`, code: CodeBadPayload},
		{name: "answer without answer", raw: `{"type":"rtc-answer","meetingId":"m1","data":{"targetUserId":"b"}}`, code: CodeBadPayload},
		{name: "mute without flag", raw: `{"type":"mute-audio","meetingId":"m1","data":{}}`, code: CodeBadPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			re := AsRoomError(err)
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestEncodeRelay_SubstitutesSender(t *testing.T) {
	in, err := Decode([]byte(`{"type":"rtc-answer","meetingId":"m1","data":{"targetUserId":"b","answer":{"sdp":"x"}}}`))
	require.NoError(t, err)
	r, ok := in.(Relay)
	require.True(t, ok)

	out, err := EncodeRelay(r, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rtc-answer","meetingId":"m1","data":{"fromUserId":"a","answer":{"sdp":"x"}}}`, string(out))
}

func TestEncodeError(t *testing.T) {
	out := EncodeError("m1", NewError(CodeNotHost, "only the host can start recording"))
	assert.JSONEq(t, `{"type":"error","meetingId":"m1","data":{"code":"not_host","message":"only the host can start recording"}}`, string(out))
}

func TestAsRoomError_WrapsUnknown(t *testing.T) {
	re := AsRoomError(assert.AnError)
	assert.Equal(t, CodeUpstreamFailure, re.Code)
	assert.ErrorIs(t, re, assert.AnError)

	var target *RoomError
	wrapped := Upstream("get meeting", domain.ErrMeetingNotFound)
	require.ErrorAs(t, error(wrapped), &target)
	assert.ErrorIs(t, wrapped, domain.ErrMeetingNotFound)
}
