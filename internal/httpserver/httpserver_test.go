package httpserver

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/vadim-su/homedns/internal/config"
)

func TestServer_EnsureCertificateGeneratesKeyPair(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		HTTPS: &config.HTTPSConfig{
			Listen:       0,
			PrivateKey:   filepath.Join(dir, "server.key"),
			PublicKey:    filepath.Join(dir, "server.crt"),
			GenerateKeys: true,
		},
	}

	srv := New(cfg, http.NotFoundHandler())
	if err := srv.ensureCertificate(); err != nil {
		t.Fatalf("ensureCertificate failed: %v", err)
	}

	if _, err := os.Stat(cfg.HTTPS.PrivateKey); err != nil {
		t.Fatalf("expected private key file: %v", err)
	}
	if _, err := os.Stat(cfg.HTTPS.PublicKey); err != nil {
		t.Fatalf("expected public key file: %v", err)
	}

	if _, err := tls.LoadX509KeyPair(cfg.HTTPS.PublicKey, cfg.HTTPS.PrivateKey); err != nil {
		t.Fatalf("expected generated files to form a valid key pair: %v", err)
	}
}

func TestServer_EnsureCertificateSkipsWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		HTTPS: &config.HTTPSConfig{
			Listen:       0,
			PrivateKey:   filepath.Join(dir, "server.key"),
			PublicKey:    filepath.Join(dir, "server.crt"),
			GenerateKeys: false,
		},
	}

	srv := New(cfg, http.NotFoundHandler())
	if err := srv.ensureCertificate(); err != nil {
		t.Fatalf("ensureCertificate failed: %v", err)
	}

	if _, err := os.Stat(cfg.HTTPS.PrivateKey); !os.IsNotExist(err) {
		t.Fatalf("expected no private key file to be generated when disabled")
	}
}

func TestServer_EnsureCertificateDoesNotOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		HTTPS: &config.HTTPSConfig{
			Listen:       0,
			PrivateKey:   filepath.Join(dir, "server.key"),
			PublicKey:    filepath.Join(dir, "server.crt"),
			GenerateKeys: true,
		},
	}

	srv := New(cfg, http.NotFoundHandler())
	if err := srv.ensureCertificate(); err != nil {
		t.Fatalf("first ensureCertificate failed: %v", err)
	}

	before, err := os.ReadFile(cfg.HTTPS.PublicKey)
	if err != nil {
		t.Fatalf("failed to read generated certificate: %v", err)
	}

	if err := srv.ensureCertificate(); err != nil {
		t.Fatalf("second ensureCertificate failed: %v", err)
	}

	after, err := os.ReadFile(cfg.HTTPS.PublicKey)
	if err != nil {
		t.Fatalf("failed to read certificate after second call: %v", err)
	}

	if string(before) != string(after) {
		t.Fatalf("expected ensureCertificate to leave an existing certificate untouched")
	}
}

func TestServer_StartAndShutdownHTTP(t *testing.T) {
	cfg := &config.Config{
		HTTP: &config.HTTPConfig{Listen: 0},
	}

	srv := New(cfg, http.NotFoundHandler())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}
