// Package auth resolves the credential on a websocket upgrade request to a
// user identity. Every failure here rejects the connection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 5 * time.Second

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidOrExpired  = errors.New("invalid or expired credential")
	ErrUserNotFound      = domain.ErrUserNotFound
	ErrAuthTimeout       = errors.New("authentication timed out")
)

// UserDirectory resolves a token subject to a user.
type UserDirectory interface {
	FindUser(ctx context.Context, id domain.UserID) (domain.Identity, error)
}

// Claims matches the session tokens issued by the web app: the user id is
// carried in "id", with "sub" accepted as well.
type Claims struct {
	ID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) userID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Subject
}

type Authenticator struct {
	secret     []byte
	cookieName string
	queryParam string
	timeout    time.Duration
	users      UserDirectory
}

func NewAuthenticator(cfg config.AuthConfig, users UserDirectory) *Authenticator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Authenticator{
		secret:     []byte(cfg.JWTSecret),
		cookieName: cfg.CookieName,
		queryParam: cfg.QueryParam,
		timeout:    cfg.Timeout,
		users:      users,
	}
}

// Authenticate checks the token on r and looks the user up. The lookup is
// bounded by the configured timeout.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (domain.Identity, error) {
	token := a.tokenFrom(r)
	if token == "" {
		return domain.Identity{}, ErrMissingCredential
	}
	uid, err := a.Verify(token)
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := util.Bounded(ctx, a.timeout, func(ctx context.Context) (domain.Identity, error) {
		return a.users.FindUser(ctx, uid)
	})
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, util.ErrTimeout):
		return domain.Identity{}, ErrAuthTimeout
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUserIDEmpty), errors.Is(err, domain.ErrUserIDTooLong):
		return domain.Identity{}, ErrUserNotFound
	default:
		return domain.Identity{}, fmt.Errorf("lookup user: %w", err)
	}
}

// tokenFrom prefers the query parameter, then the cookie, then a bearer header.
func (a *Authenticator) tokenFrom(r *http.Request) string {
	if t := r.URL.Query().Get(a.queryParam); t != "" {
		return t
	}
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func (a *Authenticator) Verify(token string) (domain.UserID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		log.Debug().Err(err).Str("module", "auth").Msg("token rejected")
		return "", fmt.Errorf("%w: %v", ErrInvalidOrExpired, err)
	}
	uid := claims.userID()
	if uid == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidOrExpired)
	}
	return domain.UserID(uid), nil
}

// IssueToken mints a session token understood by Verify.
func IssueToken(secret []byte, uid domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID: string(uid),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(uid),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// StatusFor maps an authentication error to the HTTP status of the rejected upgrade.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrInvalidOrExpired), errors.Is(err, ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
