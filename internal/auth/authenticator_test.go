package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSubject registers a fresh RSA key pair as a subject and returns
// the subject id and private key to sign tokens with.
func testSubject(t *testing.T, registry *Registry) (string, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	subject, err := registry.AddSubject("", certPEM)
	if err != nil {
		t.Fatalf("failed to register subject: %v", err)
	}

	return subject.ID, key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newTestAuthenticator(t *testing.T, cfg AuthenticatorConfig) (*Authenticator, *Registry) {
	t.Helper()
	dir := t.TempDir()
	registry := NewRegistry(filepath.Join(dir, "subjects.yaml"), filepath.Join(dir, "certs"))
	return NewAuthenticator(registry, cfg), registry
}

func TestAuthenticator_AcceptsValidToken(t *testing.T) {
	a, registry := newTestAuthenticator(t, AuthenticatorConfig{})
	subjectID, key := testSubject(t, registry)

	token := signToken(t, key, jwt.MapClaims{
		"sub": subjectID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/hostname/a/host.example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	got, err := a.Authenticate(req)
	if err != nil {
		t.Fatalf("expected authentication to succeed, got %v", err)
	}
	if got != subjectID {
		t.Fatalf("expected subject %q, got %q", subjectID, got)
	}
}

func TestAuthenticator_RejectsMissingToken(t *testing.T) {
	a, _ := newTestAuthenticator(t, AuthenticatorConfig{})

	req := httptest.NewRequest(http.MethodGet, "/hostname/a/host.example.com", nil)
	if _, err := a.Authenticate(req); err == nil {
		t.Fatalf("expected an error for a missing token")
	}
}

func TestAuthenticator_RejectsUnknownSubject(t *testing.T) {
	a, _ := newTestAuthenticator(t, AuthenticatorConfig{})

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	token := signToken(t, key, jwt.MapClaims{
		"sub": "00000000-0000-0000-0000-000000000000",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/hostname/a/host.example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if _, err := a.Authenticate(req); err == nil {
		t.Fatalf("expected an error for an unregistered subject")
	}
}

func TestAuthenticator_RejectsExpiredToken(t *testing.T) {
	a, registry := newTestAuthenticator(t, AuthenticatorConfig{})
	subjectID, key := testSubject(t, registry)

	token := signToken(t, key, jwt.MapClaims{
		"sub": subjectID,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/hostname/a/host.example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if _, err := a.Authenticate(req); err == nil {
		t.Fatalf("expected an error for an expired token")
	}
}

func TestAuthenticator_RejectsWrongSigningKey(t *testing.T) {
	a, registry := newTestAuthenticator(t, AuthenticatorConfig{})
	subjectID, _ := testSubject(t, registry)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	token := signToken(t, otherKey, jwt.MapClaims{
		"sub": subjectID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/hostname/a/host.example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if _, err := a.Authenticate(req); err == nil {
		t.Fatalf("expected an error when the token was signed by a different key")
	}
}

func TestAuthenticator_EnforcesAudience(t *testing.T) {
	a, registry := newTestAuthenticator(t, AuthenticatorConfig{Audience: []string{"homedns-api"}})
	subjectID, key := testSubject(t, registry)

	token := signToken(t, key, jwt.MapClaims{
		"sub": subjectID,
		"aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/hostname/a/host.example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if _, err := a.Authenticate(req); err == nil {
		t.Fatalf("expected an error for a token with the wrong audience")
	}
}
