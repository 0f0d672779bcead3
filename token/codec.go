// Package token signs and verifies the compact bearer tokens the service
// issues. Tokens are HS256 JWTs carrying the subject id, a tenantId claim,
// and issued-at/expiry timestamps.
package token

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/qubeio/microbees/errors"
)

// Claims is the payload of a signed token.
type Claims struct {
	gojwt.RegisteredClaims
	TenantID string `json:"tenantId"`
}

// Identity is the verified content of a token.
type Identity struct {
	Subject  string
	TenantID string
}

// Codec issues and verifies signed tokens with a symmetric key.
type Codec struct {
	cfg Config
	now func() time.Time
}

// NewCodec creates a token codec from config.
func NewCodec(cfg Config) (*Codec, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, now: time.Now}, nil
}

// Issue produces a signed token for the given subject bound to tenantID.
// Issued-at is now, expiry is now + the configured TTL.
func (c *Codec) Issue(subject, tenantID string) (string, error) {
	now := c.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(c.cfg.TTL)),
		},
		TenantID: tenantID,
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).
		SignedString([]byte(c.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// embedded identity. Claims are read only after verification succeeds; any
// failure collapses into a single InvalidToken error.
func (c *Codec) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Identity{}, apperrors.InvalidToken().WithCause(err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.TenantID == "" {
		return Identity{}, apperrors.InvalidToken()
	}
	return Identity{Subject: claims.Subject, TenantID: claims.TenantID}, nil
}

// keyFunc pins the signing algorithm and returns the verification key.
func (c *Codec) keyFunc(t *gojwt.Token) (interface{}, error) {
	if t.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("token: unexpected signing method: %s", t.Method.Alg())
	}
	return []byte(c.cfg.Secret), nil
}
