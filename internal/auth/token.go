package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization header required")
	ErrInvalidToken = errors.New("invalid token")
)

// VerifierConfig selects how bearer tokens are checked. Exactly one of
// HMACSecret or RSAPublicKeyPEM must be set.
type VerifierConfig struct {
	HMACSecret      string
	RSAPublicKeyPEM []byte
	Issuer          string
	Audience        string
}

type tokenClaims struct {
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks signature, issuer, audience and expiry of bearer tokens.
type Verifier struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	var (
		methods []string
		key     interface{}
	)
	switch {
	case cfg.HMACSecret != "" && len(cfg.RSAPublicKeyPEM) > 0:
		return nil, fmt.Errorf("configure either an HMAC secret or an RSA public key, not both")
	case cfg.HMACSecret != "":
		methods = []string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}
		key = []byte(cfg.HMACSecret)
	case len(cfg.RSAPublicKeyPEM) > 0:
		pub, err := jwt.ParseRSAPublicKeyFromPEM(cfg.RSAPublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse rsa public key: %w", err)
		}
		methods = []string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodRS384.Alg(), jwt.SigningMethodRS512.Alg()}
		key = pub
	default:
		return nil, fmt.Errorf("no token verification key configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Verifier{
		parser:  jwt.NewParser(opts...),
		keyFunc: func(*jwt.Token) (interface{}, error) { return key, nil },
	}, nil
}

// Verify parses a raw token and returns its claims.
func (v *Verifier) Verify(raw string) (Claims, error) {
	var tc tokenClaims
	token, err := v.parser.ParseWithClaims(raw, &tc, v.keyFunc)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		Subject:  tc.Subject,
		Username: tc.PreferredUsername,
		Email:    tc.Email,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// SignHS256 mints a token for local development and tests.
func SignHS256(secret string, c Claims, issuer string, now time.Time, ttl time.Duration) (string, error) {
	return sign(jwt.SigningMethodHS256, []byte(secret), c, issuer, now, ttl)
}

// SignRS256 is the RSA counterpart of SignHS256.
func SignRS256(key *rsa.PrivateKey, c Claims, issuer string, now time.Time, ttl time.Duration) (string, error) {
	return sign(jwt.SigningMethodRS256, key, c, issuer, now, ttl)
}

func sign(method jwt.SigningMethod, key interface{}, c Claims, issuer string, now time.Time, ttl time.Duration) (string, error) {
	tc := tokenClaims{
		PreferredUsername: c.Username,
		Email:             c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(method, tc).SignedString(key)
}
