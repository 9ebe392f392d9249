package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[domain.UserID]domain.Identity
	delay time.Duration
	// block waits for ctx and returns its error, like a database driver.
	block bool
}

func (f *fakeDirectory) FindUser(ctx context.Context, id domain.UserID) (domain.Identity, error) {
	if f.block {
		<-ctx.Done()
		return domain.Identity{}, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	u, ok := f.users[id]
	if !ok {
		return domain.Identity{}, domain.ErrUserNotFound
	}
	return u, nil
}

var secret = []byte("test-secret")

func newAuth(dir UserDirectory) *Authenticator {
	return NewAuthenticator(config.AuthConfig{
		JWTSecret:  string(secret),
		CookieName: "token",
		QueryParam: "token",
		Timeout:    50 * time.Millisecond,
	}, dir)
}

func directory() *fakeDirectory {
	return &fakeDirectory{users: map[domain.UserID]domain.Identity{
		"u1": {ID: "u1", Name: "Sam", Email: "sam@example.com"},
	}}
}

func TestAuthenticate_TokenSources(t *testing.T) {
	tok, err := IssueToken(secret, "u1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func() *http.Request
	}{
		{
			name: "query parameter",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/ws?token="+tok, nil)
			},
		},
		{
			name: "cookie",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/ws", nil)
				r.AddCookie(&http.Cookie{Name: "token", Value: tok})
				return r
			},
		},
		{
			name: "bearer header",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/ws", nil)
				r.Header.Set("Authorization", "Bearer "+tok)
				return r
			},
		},
	}
	a := newAuth(directory())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), tt.build())
			require.NoError(t, err)
			assert.Equal(t, domain.UserID("u1"), id.ID)
			assert.Equal(t, "Sam", id.Name)
		})
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	valid, err := IssueToken(secret, "u1", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, "u1", -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken([]byte("other"), "u1", time.Hour)
	require.NoError(t, err)
	ghost, err := IssueToken(secret, "ghost", time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "u1"}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		dir    *fakeDirectory
		want   error
		status int
	}{
		{name: "missing", token: "", dir: directory(), want: ErrMissingCredential, status: http.StatusUnauthorized},
		{name: "garbage", token: "not-a-jwt", dir: directory(), want: ErrInvalidOrExpired, status: http.StatusUnauthorized},
		{name: "expired", token: expired, dir: directory(), want: ErrInvalidOrExpired, status: http.StatusUnauthorized},
		{name: "wrong key", token: foreign, dir: directory(), want: ErrInvalidOrExpired, status: http.StatusUnauthorized},
		{name: "no expiry", token: noExp, dir: directory(), want: ErrInvalidOrExpired, status: http.StatusUnauthorized},
		{name: "unknown user", token: ghost, dir: directory(), want: ErrUserNotFound, status: http.StatusUnauthorized},
		{name: "slow lookup", token: valid, dir: &fakeDirectory{users: directory().users, delay: time.Second}, want: ErrAuthTimeout, status: http.StatusServiceUnavailable},
		{name: "lookup hits deadline", token: valid, dir: &fakeDirectory{users: directory().users, block: true}, want: ErrAuthTimeout, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.token != "" {
				target += "?token=" + tt.token
			}
			_, err := newAuth(tt.dir).Authenticate(context.Background(), httptest.NewRequest(http.MethodGet, target, nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, StatusFor(err))
		})
	}
}

func TestNewAuthenticator_DefaultTimeout(t *testing.T) {
	tok, err := IssueToken(secret, "u1", time.Hour)
	require.NoError(t, err)
	a := NewAuthenticator(config.AuthConfig{JWTSecret: string(secret), QueryParam: "token"}, directory())

	id, err := a.Authenticate(context.Background(), httptest.NewRequest(http.MethodGet, "/ws?token="+tok, nil))
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), id.ID)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		ID:               "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = newAuth(directory()).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}
