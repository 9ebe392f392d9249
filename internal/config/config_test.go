package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "none")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(65536), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, 5*time.Second, cfg.Auth.Timeout)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, 2000, cfg.Chat.MaxLength)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: debug
port: 9000
chat:
  max_length: 500
store:
  type: postgres
  dsn: host=localhost user=meet dbname=meet
ice_servers:
  - urls: ["turn:turn.example.com:3478"]
    username: u
    credential: p
`), 0o600))
	t.Setenv("MEET_AUTH_JWT_SECRET", "from-env")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--port", "9100"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9100, cfg.Port, "flag wins over file")
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 500, cfg.Chat.MaxLength)
	assert.Equal(t, "postgres", cfg.Store.Type)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, "u", cfg.ICEServers[0].Username)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))
	_, err := Load(fs)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Port:       0,
		SendBuffer: 0,
		PingPeriod: time.Minute,
		PongWait:   time.Second,
		Store:      StoreConfig{Type: "mongo"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "send_buffer")
	assert.Contains(t, err.Error(), "ping_period")
	assert.Contains(t, err.Error(), "jwt_secret")
	assert.Contains(t, err.Error(), "mongo")
	assert.Contains(t, err.Error(), "auth.timeout")
	assert.Contains(t, err.Error(), "store.timeout")
}
