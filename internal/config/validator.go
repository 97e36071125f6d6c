package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Validator handles configuration validation
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

var labelRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// ValidateConfig performs comprehensive validation of the configuration
func (v *Validator) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := v.validateAuthModes(config); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if config.HTTPS != nil {
		if err := v.ValidateHTTPSConfig(config.HTTPS); err != nil {
			return fmt.Errorf("https config validation failed: %w", err)
		}
	}

	if config.HTTP != nil {
		if err := v.ValidateHTTPConfig(config.HTTP); err != nil {
			return fmt.Errorf("http config validation failed: %w", err)
		}
	}

	if config.HTTPS == nil && config.HTTP == nil {
		return fmt.Errorf("at least one of https or http must be configured")
	}

	if err := v.ValidateJWTAuthConfig(&config.JWTAuth); err != nil {
		return fmt.Errorf("jwt_auth config validation failed: %w", err)
	}

	if config.BasicAuth != nil {
		if err := v.ValidateBasicAuthConfig(config.BasicAuth); err != nil {
			return fmt.Errorf("basic_auth config validation failed: %w", err)
		}
	}

	if err := v.ValidateDNSConfig(&config.DNS); err != nil {
		return fmt.Errorf("dns config validation failed: %w", err)
	}

	return nil
}

// validateAuthModes enforces that exactly one authentication mode is active.
func (v *Validator) validateAuthModes(config *Config) error {
	active := 0
	if config.JWTAuth.Enabled {
		active++
	}
	if config.BasicAuth != nil && config.BasicAuth.Enabled {
		active++
	}
	if config.NoAuth.Enabled {
		active++
	}

	if active == 0 {
		return fmt.Errorf("exactly one of jwt_auth, basic_auth, no_auth must be enabled, got none")
	}
	if active > 1 {
		return fmt.Errorf("exactly one of jwt_auth, basic_auth, no_auth must be enabled, got %d", active)
	}

	return nil
}

// ValidateHTTPSConfig validates the https listener configuration.
func (v *Validator) ValidateHTTPSConfig(cfg *HTTPSConfig) error {
	if err := validatePort(cfg.Listen); err != nil {
		return fmt.Errorf("invalid listen port: %w", err)
	}

	if !cfg.GenerateKeys {
		if cfg.PrivateKey == "" {
			return fmt.Errorf("private_key is required when generate_keys is false")
		}
		if cfg.PublicKey == "" {
			return fmt.Errorf("public_key is required when generate_keys is false")
		}
	}

	return nil
}

// ValidateHTTPConfig validates the plain http listener configuration.
func (v *Validator) ValidateHTTPConfig(cfg *HTTPConfig) error {
	if err := validatePort(cfg.Listen); err != nil {
		return fmt.Errorf("invalid listen port: %w", err)
	}
	return nil
}

// ValidateJWTAuthConfig validates the JWT authentication configuration.
func (v *Validator) ValidateJWTAuthConfig(cfg *JWTAuthConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Subjects == "" {
		return fmt.Errorf("subjects path is required")
	}

	if len(cfg.Algorithms) == 0 {
		return fmt.Errorf("at least one algorithm must be configured")
	}
	for _, alg := range cfg.Algorithms {
		if !isSupportedJWTAlgorithm(alg) {
			return fmt.Errorf("unsupported algorithm: %s", alg)
		}
	}

	if cfg.Leeway < 0 {
		return fmt.Errorf("leeway cannot be negative")
	}

	return nil
}

func isSupportedJWTAlgorithm(alg string) bool {
	switch alg {
	case "RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "HS256", "HS384", "HS512":
		return true
	default:
		return false
	}
}

// ValidateBasicAuthConfig validates the basic authentication configuration.
func (v *Validator) ValidateBasicAuthConfig(cfg *BasicAuthConfig) error {
	if cfg.Enabled && cfg.Secrets == "" {
		return fmt.Errorf("secrets path is required when basic_auth is enabled")
	}
	return nil
}

// ValidateDNSConfig validates the dns section: listeners, cache,
// forwarding, database, and zone/nameserver lists.
func (v *Validator) ValidateDNSConfig(cfg *DNSConfig) error {
	if err := validatePort(cfg.ListenTCP); err != nil {
		return fmt.Errorf("invalid listen_tcp: %w", err)
	}
	if err := validatePort(cfg.ListenUDP); err != nil {
		return fmt.Errorf("invalid listen_udp: %w", err)
	}

	if cfg.Forwarding.Enabled {
		if len(cfg.Forwarding.Servers) == 0 {
			return fmt.Errorf("forwarding.servers cannot be empty when forwarding is enabled")
		}
		for _, server := range cfg.Forwarding.Servers {
			if err := validateForwardServer(server); err != nil {
				return fmt.Errorf("invalid forwarding server %q: %w", server, err)
			}
		}
		for _, timeout := range cfg.Forwarding.Timeouts {
			if timeout <= 0 {
				return fmt.Errorf("forwarding timeouts must be positive")
			}
		}
	}

	if cfg.Database.SQLite.Path == "" {
		return fmt.Errorf("database.sqlite.path is required")
	}

	for _, domain := range cfg.SOADomains {
		if !isValidDomainName(domain) {
			return fmt.Errorf("invalid soa domain: %s", domain)
		}
	}

	for _, ns := range cfg.NameServers {
		if !isValidDomainName(strings.TrimSuffix(ns, ".")) {
			return fmt.Errorf("invalid name server: %s", ns)
		}
	}

	return nil
}

func validateForwardServer(server string) error {
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		// Bare host/IP with no port is allowed; the forwarder defaults to 53.
		if net.ParseIP(server) != nil || isValidDomainName(server) {
			return nil
		}
		return fmt.Errorf("must be host, host:port, or IP")
	}

	if net.ParseIP(host) == nil && !isValidDomainName(host) {
		return fmt.Errorf("invalid host: %s", host)
	}

	return validatePortString(port)
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validatePortString(port string) error {
	n := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return fmt.Errorf("invalid port: %s", port)
		}
		n = n*10 + int(c-'0')
	}
	return validatePort(n)
}

// isValidDomainName applies basic length/label/hyphen rules to a dotted
// domain name (no trailing-dot requirement).
func isValidDomainName(name string) bool {
	if name == "" || len(name) > 253 {
		return false
	}

	labels := strings.Split(name, ".")
	for _, label := range labels {
		if !labelRegex.MatchString(label) {
			return false
		}
	}

	return true
}
