// Package anonymous issues the bearer tokens that identify a shopping
// session. The token carries the session id; nothing is stored server side.
package anonymous

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const issuer = "storefront"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrSecretMissing = errors.New("session secret missing")
)

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func New(secret string, ttl time.Duration, logger *zap.Logger) (*Service, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.Named("anonymous"),
		now:    time.Now,
	}, nil
}

// Issue starts a new session and returns its signed token.
func (s *Service) Issue() (token, sessionID string, expiresAt time.Time, err error) {
	now := s.now()
	sessionID = uuid.NewString()
	expiresAt = now.Add(s.ttl)
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, sessionID, expiresAt, nil
}

// Lookup validates token and returns the session id it names.
func (s *Service) Lookup(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		s.logger.Debug("session token rejected", zap.Error(err))
		return "", ErrInvalidToken
	}
	if claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
