package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors the REST layer maps to HTTP 401.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthenticatorConfig configures an Authenticator. Algorithms defaults
// to {RS256}; Leeway defaults to 30s, matching spec §4.6/§6.
type AuthenticatorConfig struct {
	Algorithms []string
	Issuer     string
	Audience   []string
	Leeway     time.Duration
}

// Authenticator validates Bearer tokens against a subject Registry.
type Authenticator struct {
	registry *Registry
	config   AuthenticatorConfig
}

// NewAuthenticator builds an Authenticator backed by registry.
func NewAuthenticator(registry *Registry, config AuthenticatorConfig) *Authenticator {
	if len(config.Algorithms) == 0 {
		config.Algorithms = []string{"RS256"}
	}
	if config.Leeway == 0 {
		config.Leeway = 30 * time.Second
	}
	return &Authenticator{registry: registry, config: config}
}

// unverifiedClaims carries the fields read from a token's claims before
// its signature has been checked.
type unverifiedClaims struct {
	Subject string `json:"sub"`
}

func (c *unverifiedClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c *unverifiedClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c *unverifiedClaims) GetNotBefore() (*jwt.NumericDate, error)     { return nil, nil }
func (c *unverifiedClaims) GetIssuer() (string, error)                 { return "", nil }
func (c *unverifiedClaims) GetSubject() (string, error)                { return c.Subject, nil }
func (c *unverifiedClaims) GetAudience() (jwt.ClaimStrings, error)      { return nil, nil }

// Authenticate parses the Authorization header of r, looks up the
// unverified sub claim's subject in the registry, then re-decodes the
// token with signature and claim verification. It returns the
// authenticated subject id on success.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", ErrMissingToken
	}

	unverified := &unverifiedClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, unverified); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if unverified.Subject == "" {
		return "", ErrUnauthorized
	}

	_, certPEM, err := a.registry.GetSubject(unverified.Subject)
	if err != nil {
		return "", ErrUnauthorized
	}

	publicKey, err := parseRSAPublicKey(certPEM)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := jwt.MapClaims{}
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if !a.algorithmAllowed(token.Method.Alg()) {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return publicKey, nil
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods(a.config.Algorithms),
		jwt.WithLeeway(a.config.Leeway),
	}
	if a.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(a.config.Issuer))
	}
	if len(a.config.Audience) > 0 {
		options = append(options, jwt.WithAudience(a.config.Audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, options...)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub != unverified.Subject {
		return "", ErrUnauthorized
	}

	return sub, nil
}

func (a *Authenticator) algorithmAllowed(alg string) bool {
	for _, allowed := range a.config.Algorithms {
		if allowed == alg {
			return true
		}
	}
	return false
}

// parseRSAPublicKey decodes a PEM-encoded RSA public key, accepting
// both PKIX ("PUBLIC KEY") and PKCS#1 ("RSA PUBLIC KEY") blocks.
func parseRSAPublicKey(certPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if rsaKey, ok := key.(*rsa.PublicKey); ok {
			return rsaKey, nil
		}
		return nil, fmt.Errorf("PEM block does not contain an RSA public key")
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	return nil, fmt.Errorf("unrecognized public key encoding")
}
