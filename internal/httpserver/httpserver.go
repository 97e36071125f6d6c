// Package httpserver binds the REST control plane to HTTP and/or HTTPS
// listeners, bootstrapping a self-signed certificate when configured to
// do so and one is not already present on disk.
package httpserver

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vadim-su/homedns/internal/config"
)

// Server wraps the plain HTTP and TLS listeners serving handler.
type Server struct {
	config  *config.Config
	handler http.Handler

	httpServer  *http.Server
	httpsServer *http.Server
}

// New builds a Server bound to cfg's https/http sections, serving
// handler on both if configured.
func New(cfg *config.Config, handler http.Handler) *Server {
	return &Server{config: cfg, handler: handler}
}

// Start binds and serves every configured listener in the background,
// returning once the sockets are bound (not once they stop serving).
func (s *Server) Start() error {
	if s.config.HTTP != nil {
		addr := ":" + strconv.Itoa(s.config.HTTP.Listen)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to bind HTTP listener: %w", err)
		}

		s.httpServer = &http.Server{Handler: s.handler}
		go func() {
			log.Printf("HTTP control plane listening on %s", addr)
			if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	if s.config.HTTPS != nil {
		if err := s.ensureCertificate(); err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}

		cert, err := tls.LoadX509KeyPair(s.config.HTTPS.PublicKey, s.config.HTTPS.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificate: %w", err)
		}

		addr := ":" + strconv.Itoa(s.config.HTTPS.Listen)
		listener, err := tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cert}})
		if err != nil {
			return fmt.Errorf("failed to bind HTTPS listener: %w", err)
		}

		s.httpsServer = &http.Server{Handler: s.handler}
		go func() {
			log.Printf("HTTPS control plane listening on %s", addr)
			if err := s.httpsServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTPS server error: %v", err)
			}
		}()
	}

	return nil
}

// ensureCertificate generates a self-signed certificate/key pair at the
// configured paths if GenerateKeys is set and either file is absent.
// This is a bootstrap convenience only; production deployments mount an
// externally issued certificate (spec §4.8/§9).
func (s *Server) ensureCertificate() error {
	cfg := s.config.HTTPS
	if !cfg.GenerateKeys {
		return nil
	}

	_, certErr := os.Stat(cfg.PublicKey)
	_, keyErr := os.Stat(cfg.PrivateKey)
	if certErr == nil && keyErr == nil {
		return nil
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: generateSerial(),
		Subject:      pkix.Name{CommonName: "homedns"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("failed to create self-signed certificate: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.PublicKey), 0750); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.PrivateKey), 0750); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	certOut, err := os.OpenFile(cfg.PublicKey, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open certificate file: %w", err)
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}

	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	keyOut, err := os.OpenFile(cfg.PrivateKey, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open private key file: %w", err)
	}
	defer keyOut.Close()
	if err := pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	log.Printf("generated self-signed certificate at %s", cfg.PublicKey)
	return nil
}

func generateSerial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return big.NewInt(time.Now().UnixNano())
	}
	return serial
}

// Shutdown gracefully stops every running listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.httpsServer != nil {
		if err := s.httpsServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
