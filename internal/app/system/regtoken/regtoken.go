// Package regtoken issues and verifies registration tokens: short-lived
// HS256 JWTs, signed with the app secret, that bind an email address to a
// pending registration.
package regtoken

import (
	"errors"
	"time"

	"github.com/dalemusser/sasquatch/internal/app/system/normalize"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose is carried in the token audience so other tokens signed with the
// same secret cannot be replayed as registration tokens.
const Purpose = "register"

var (
	ErrInvalidToken = errors.New("invalid registration token")
	ErrExpiredToken = errors.New("registration token expired")
	ErrEmptySecret  = errors.New("registration token secret is empty")
)

// Issuer signs and verifies registration tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer that signs with secret and issues tokens
// valid for ttl.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a token for email and the time it expires.
func (i *Issuer) Issue(email string) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   normalize.Email(email),
		Audience:  jwt.ClaimStrings{Purpose},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Verify checks signature, audience and expiry and returns the email the
// token was issued for.
func (i *Issuer) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Purpose),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
