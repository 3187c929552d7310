package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/config"
	"github.com/rohits-web03/sharelink/internal/security"
)

const (
	adminRole     = "admin"
	sessionIssuer = "sharelink"
)

// AdminClaims is the payload of an admin session token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and checks admin session tokens. There is a single
// admin credential, hashed once at startup.
type SessionManager struct {
	enabled      bool
	passwordHash string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewSessionManager(cfg config.AuthConfig, ttl time.Duration) (*SessionManager, error) {
	m := &SessionManager{
		enabled: cfg.Enabled,
		secret:  []byte(cfg.JWTSecret),
		ttl:     ttl,
		now:     time.Now,
	}
	if !cfg.Enabled {
		return m, nil
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("admin password is required when auth is enabled")
	}
	if len(m.secret) == 0 {
		return nil, errors.New("jwt secret is required when auth is enabled")
	}
	hash, err := security.HashSecret(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	m.passwordHash = hash
	return m, nil
}

func (m *SessionManager) Enabled() bool { return m.enabled }

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Login checks password and returns a signed token with its expiry.
func (m *SessionManager) Login(password string) (string, time.Time, error) {
	if !m.enabled {
		return "", time.Time{}, fmt.Errorf("%w: authentication is disabled", common.ErrInvalidInput)
	}
	if password == "" || !security.VerifySecret(m.passwordHash, password) {
		return "", time.Time{}, common.ErrUnauthorized
	}

	now := m.now()
	expiration := now.Add(m.ttl)
	claims := &AdminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   adminRole,
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expiration, nil
}

// Verify parses a token issued by Login.
func (m *SessionManager) Verify(token string) (*AdminClaims, error) {
	if token == "" {
		return nil, common.ErrUnauthorized
	}
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Role != adminRole {
		return nil, common.ErrUnauthorized
	}
	return claims, nil
}
