// Package auth issues and verifies the JWT pairs that protect the API, and
// holds the password hashing helpers shared with the user services.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var errWrongTokenType = errors.New("wrong token type")

// Claims is the payload of both access and refresh tokens. Typ distinguishes
// the two so a refresh token can never be replayed as an access token.
type Claims struct {
	Typ string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Manager signs and parses token pairs with a single HMAC secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssuePair mints a fresh access/refresh pair for a user.
func (m *Manager) IssuePair(userID uuid.UUID, now time.Time) (TokenPair, error) {
	access, err := m.sign(userID, tokenTypeAccess, now, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(userID, tokenTypeRefresh, now, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) sign(userID uuid.UUID, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Typ: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseAccess validates an access token and returns the subject user id.
func (m *Manager) ParseAccess(token string) (uuid.UUID, error) {
	return m.parse(token, tokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns the subject user id.
func (m *Manager) ParseRefresh(token string) (uuid.UUID, error) {
	return m.parse(token, tokenTypeRefresh)
}

func (m *Manager) parse(token, wantTyp string) (uuid.UUID, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Typ != wantTyp {
		return uuid.Nil, errWrongTokenType
	}
	return uuid.Parse(claims.Subject)
}
