package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// Token is a signed session token and its expiry.
type Token struct {
	SessionID string    // uuid carried in the sub claim
	Raw       string    // serialized JWT
	Exp       time.Time // UTC expiry
}

// Tokens issues and verifies HS256 session tokens.  Sessions are
// anonymous: the only claim of interest is the session id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens builds a token issuer.  ttl <= 0 defaults to 30 days.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue starts a new session.
func (t *Tokens) Issue() (Token, error) {
	now := time.Now().UTC()
	sid := uuid.NewString()
	exp := now.Add(t.ttl)
	claims := jwt.MapClaims{
		"sub": sid,
		"typ": "session",
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, fmt.Errorf("session: sign: %w", err)
	}
	return Token{SessionID: sid, Raw: signed, Exp: exp}, nil
}

// Parse verifies raw and returns its session id.
func (t *Tokens) Parse(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "session" {
		return "", ErrInvalidToken
	}
	sid, _ := claims["sub"].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return "", fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}
	return sid, nil
}
