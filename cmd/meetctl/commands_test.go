package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkeye/Meet/internal/auth"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func TestMeetctlWorkflow(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "meet.db")
	t.Chdir(t.TempDir())
	t.Setenv("MEET_STORE_DSN", dsn)
	t.Setenv("MEET_AUTH_JWT_SECRET", "cli-secret")

	host, err := run(t, "user", "add", "--name", "Sana", "--email", "sana@example.com")
	require.NoError(t, err)
	guest, err := run(t, "user", "add", "--name", "Tomas", "--email", "tomas@example.com")
	require.NoError(t, err)

	meeting, err := run(t, "meeting", "create", "--title", "Retro", "--host", host)
	require.NoError(t, err)
	require.NotEmpty(t, meeting)

	_, err = run(t, "meeting", "add-participant", "--meeting", meeting, "--user", guest)
	require.NoError(t, err)
	_, err = run(t, "meeting", "add-participant", "--meeting", meeting, "--user", guest, "--role", "host")
	assert.ErrorContains(t, err, "role must be")
	_, err = run(t, "meeting", "add-participant", "--meeting", "nope", "--user", guest)
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
	_, err = run(t, "meeting", "create", "--title", "x", "--host", "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	token, err := run(t, "token", "--user", guest)
	require.NoError(t, err)
	uid, err := auth.NewAuthenticator(config.AuthConfig{JWTSecret: "cli-secret"}, nil).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(guest), uid)

	st, err := store.Open(config.StoreConfig{Type: "sqlite", DSN: dsn})
	require.NoError(t, err)
	ok, err := st.IsParticipant(context.Background(), domain.MeetingID(meeting), domain.UserID(guest))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, st.AppendChatMessage(context.Background(), domain.ChatMessage{
		MeetingID:  domain.MeetingID(meeting),
		SenderID:   domain.UserID(guest),
		SenderName: "Tomas",
		Message:    "see you",
	}))
	require.NoError(t, st.Close())

	history, err := run(t, "meeting", "history", "--meeting", meeting)
	require.NoError(t, err)
	assert.Contains(t, history, "Tomas: see you")
}

func TestTokenRequiresUser(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "token")
	assert.Error(t, err)
}
