package httpremote

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	deviceTokenIssuer = "fieldsync-device"
	deviceTokenTTL    = 5 * time.Minute
)

// DeviceClaims identify the worker a batch is pushed for.
type DeviceClaims struct {
	Module string `json:"module,omitempty"`
	jwt.RegisteredClaims
}

// TokenSigner mints short-lived HS256 tokens for push requests.
type TokenSigner struct {
	key []byte
	now func() time.Time
}

func NewTokenSigner(key string) *TokenSigner {
	return &TokenSigner{key: []byte(key), now: time.Now}
}

// Sign returns a token whose subject is the worker ID.
func (s *TokenSigner) Sign(workerID, module string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, DeviceClaims{
		Module: module,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   workerID,
			Issuer:    deviceTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(deviceTokenTTL)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.key)
}

// Verify parses a token signed with the same key. The receiving side of the
// protocol and tests use it.
func (s *TokenSigner) Verify(raw string) (*DeviceClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &DeviceClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.key, nil
	}, jwt.WithIssuer(deviceTokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*DeviceClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
