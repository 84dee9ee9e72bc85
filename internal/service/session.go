package service

import (
	"errors"
	"fmt"
	"time"

	"personal_blog/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionAudience = "session"
	flashAudience   = "flash"
	flashTTL        = 5 * time.Minute
)

// ErrInvalidToken is returned for any session or flash token that fails
// verification.
var ErrInvalidToken = errors.New("invalid token")

// Session is an issued login session. MaxAge is the cookie lifetime in
// seconds; 0 means a browser-session cookie.
type Session struct {
	Token     string
	UserID    int64
	Remember  bool
	ExpiresAt time.Time
	MaxAge    int
}

// SessionClaims defines the JWT claims stored in the session cookie.
// Version must match the user's current session version.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   int64 `json:"user_id"`
	Version  int64 `json:"ver"`
	Remember bool  `json:"remember"`
}

type flashClaims struct {
	jwt.RegisteredClaims
	Flashes []models.Flash `json:"flashes"`
}

// SessionManager signs and verifies the session and flash cookies with a
// single HMAC key.
type SessionManager struct {
	key         []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewSessionManager(secret string, ttl, rememberTTL time.Duration) *SessionManager {
	return &SessionManager{
		key:         []byte(secret),
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// IssueSession signs a session for userID at the given session version. A
// remembered session gets a persistent cookie living rememberTTL; otherwise
// the cookie ends with the browser and the token itself expires after ttl.
func (m *SessionManager) IssueSession(userID, version int64, remember bool) (Session, error) {
	now := m.now()
	ttl, maxAge := m.ttl, 0
	if remember {
		ttl = m.rememberTTL
		maxAge = int(m.rememberTTL / time.Second)
	}
	exp := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:   userID,
		Version:  version,
		Remember: remember,
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{
		Token:     signed,
		UserID:    userID,
		Remember:  remember,
		ExpiresAt: exp,
		MaxAge:    maxAge,
	}, nil
}

// ParseSession verifies a session token and returns its claims.
func (m *SessionManager) ParseSession(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := m.parse(token, claims, sessionAudience); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignFlashes packs pending flash messages into a short-lived token.
func (m *SessionManager) SignFlashes(flashes []models.Flash) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &flashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{flashAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
		Flashes: flashes,
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign flashes: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) ParseFlashes(token string) ([]models.Flash, error) {
	claims := &flashClaims{}
	if err := m.parse(token, claims, flashAudience); err != nil {
		return nil, err
	}
	return claims.Flashes, nil
}

func (m *SessionManager) parse(token string, claims jwt.Claims, audience string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
