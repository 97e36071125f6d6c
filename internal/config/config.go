// Package config holds the typed configuration surface consumed by every
// other component: the record store, the resolver chain, the DNS
// listener, the JWT subject registry/authenticator, and the REST/TLS
// listener. The only I/O in this package is reading and writing its own
// YAML file (and creating that file's directory); PEM paths are only
// carried for other components.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure, matching the external
// interface shape (§6): https, http, jwt_auth, basic_auth, no_auth, dns.
type Config struct {
	HTTPS      *HTTPSConfig    `yaml:"https"`
	HTTP       *HTTPConfig     `yaml:"http"`
	JWTAuth    JWTAuthConfig   `yaml:"jwt_auth"`
	BasicAuth  *BasicAuthConfig `yaml:"basic_auth"`
	NoAuth     NoAuthConfig    `yaml:"no_auth"`
	DNS        DNSConfig       `yaml:"dns"`
}

// HTTPSConfig configures the TLS listener and its bootstrap behavior.
type HTTPSConfig struct {
	Listen       int    `yaml:"listen"`
	PrivateKey   string `yaml:"private_key"`
	PublicKey    string `yaml:"public_key"`
	GenerateKeys bool   `yaml:"generate_keys"`
}

// HTTPConfig configures the plain HTTP listener.
type HTTPConfig struct {
	Listen int `yaml:"listen"`
}

// JWTAuthConfig configures Bearer-token authentication.
type JWTAuthConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Algorithms []string      `yaml:"algorithms"`
	Subjects   string        `yaml:"subjects"`
	Issuer     string        `yaml:"issuer"`
	Audience   []string      `yaml:"audience"`
	Leeway     time.Duration `yaml:"leeway"`
}

// BasicAuthConfig configures HTTP basic authentication as an alternative
// to JWT (out of the core's implementation budget; the struct exists so
// the config surface matches §6 exactly, but no handler wires it).
type BasicAuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secrets string `yaml:"secrets"`
}

// NoAuthConfig, when Enabled, disables REST authentication entirely.
type NoAuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DNSConfig configures the DNS listener, resolver chain, and record store.
type DNSConfig struct {
	ListenTCP   int               `yaml:"listen_tcp"`
	ListenUDP   int               `yaml:"listen_udp"`
	Cache       CacheConfig       `yaml:"cache"`
	Forwarding  ForwardingConfig  `yaml:"forwarding"`
	Database    DatabaseConfig    `yaml:"database"`
	TTL         uint32            `yaml:"ttl"`
	SOADomains  []string          `yaml:"soa_domains"`
	NameServers []string          `yaml:"name_servers"`
	Verbosity   int               `yaml:"verbosity"`
}

// CacheConfig toggles the resolver chain's in-memory answer cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ForwardingConfig configures the chain's forwarder stage.
type ForwardingConfig struct {
	Enabled bool          `yaml:"enabled"`
	Servers []string      `yaml:"servers"`
	Timeouts []time.Duration `yaml:"timeouts"`
}

// DatabaseConfig selects and configures the record store backend.
type DatabaseConfig struct {
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig names the file-backed storage path. Per DESIGN.md's Open
// Question resolution, this path is handed to the SurrealDB embedded
// file engine rather than a sqlite driver (grounding: no sqlite driver
// appears anywhere in the retrieval pack; surrealdb.go is the teacher's
// own persistence dependency and supports an embedded file endpoint).
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DefaultLeeway is the default permitted clock skew for exp/nbf claims.
const DefaultLeeway = 30 * time.Second

// DefaultTTL is substituted for rows stored with a zero/absent TTL.
const DefaultTTL = uint32(600)

// Default SOA synthesis timers (spec.md §4.2 step 4).
const (
	DefaultSOARefresh = 46800
	DefaultSOARetry   = 6200
	DefaultSOAExpire  = 3000000
	DefaultSOAMinimum = 300
)

// DefaultConfig returns a configuration usable for local development:
// plain HTTP only, no auth, a file-backed record store under
// /var/lib/homedns, forwarding to public resolvers.
func DefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{Listen: 8080},
		JWTAuth: JWTAuthConfig{
			Enabled:    false,
			Algorithms: []string{"RS256"},
			Subjects:   "/etc/homedns/jwt_secrets/jwt_subjects.yaml",
			Leeway:     DefaultLeeway,
		},
		NoAuth: NoAuthConfig{Enabled: true},
		DNS: DNSConfig{
			ListenTCP: 53,
			ListenUDP: 53,
			Cache:     CacheConfig{Enabled: true},
			Forwarding: ForwardingConfig{
				Enabled:  true,
				Servers:  []string{"208.67.222.222", "208.67.220.220"},
				Timeouts: []time.Duration{time.Second, 3 * time.Second, 11 * time.Second, 30 * time.Second},
			},
			Database: DatabaseConfig{
				SQLite: SQLiteConfig{Path: "/var/lib/homedns/records.db"},
			},
			TTL:         DefaultTTL,
			SOADomains:  []string{},
			NameServers: []string{},
			Verbosity:   1,
		},
	}
}

// LoadFromFile loads configuration from a YAML file, applying defaults
// for anything the file omits.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration to a YAML file (used by `config dump`).
func (c *Config) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0640); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration via the package Validator.
func (c *Config) Validate() error {
	return NewValidator().ValidateConfig(c)
}

// AuthMode reports which authentication mode is active. Exactly one of
// jwt_auth/basic_auth/no_auth should be enabled; the validator enforces
// this.
type AuthMode string

const (
	AuthModeJWT   AuthMode = "jwt"
	AuthModeBasic AuthMode = "basic"
	AuthModeNone  AuthMode = "none"
)

// ActiveAuthMode returns which authentication mode the config selects.
func (c *Config) ActiveAuthMode() AuthMode {
	if c.NoAuth.Enabled {
		return AuthModeNone
	}
	if c.BasicAuth != nil && c.BasicAuth.Enabled {
		return AuthModeBasic
	}
	if c.JWTAuth.Enabled {
		return AuthModeJWT
	}
	return AuthModeNone
}
