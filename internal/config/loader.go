package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from a YAML file plus
// environment variable overrides.
type Loader struct {
	configPaths []string
	envPrefix   string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"./homedns.yaml",
			"/etc/homedns/homedns.yaml",
		},
		envPrefix: "HOMEDNS_",
	}
}

// Load loads configuration from all available sources
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if err := l.loadFromFile(config); err != nil {
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadFromPath loads configuration from a specific file path
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile attempts to load configuration from default file locations
func (l *Loader) loadFromFile(config *Config) error {
	for _, path := range l.configPaths {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read config file %s: %w", path, err)
			}

			if err := yaml.Unmarshal(data, config); err != nil {
				return fmt.Errorf("failed to parse config file %s: %w", path, err)
			}

			return nil
		}
	}

	return nil
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) error {
	if listen := os.Getenv(l.envPrefix + "HTTPS_LISTEN"); listen != "" {
		if i, err := strconv.Atoi(listen); err == nil {
			if config.HTTPS == nil {
				config.HTTPS = &HTTPSConfig{}
			}
			config.HTTPS.Listen = i
		}
	}
	if key := os.Getenv(l.envPrefix + "HTTPS_PRIVATE_KEY"); key != "" {
		if config.HTTPS == nil {
			config.HTTPS = &HTTPSConfig{}
		}
		config.HTTPS.PrivateKey = key
	}
	if key := os.Getenv(l.envPrefix + "HTTPS_PUBLIC_KEY"); key != "" {
		if config.HTTPS == nil {
			config.HTTPS = &HTTPSConfig{}
		}
		config.HTTPS.PublicKey = key
	}
	if gen := os.Getenv(l.envPrefix + "HTTPS_GENERATE_KEYS"); gen != "" {
		if b, err := strconv.ParseBool(gen); err == nil {
			if config.HTTPS == nil {
				config.HTTPS = &HTTPSConfig{}
			}
			config.HTTPS.GenerateKeys = b
		}
	}

	if listen := os.Getenv(l.envPrefix + "HTTP_LISTEN"); listen != "" {
		if i, err := strconv.Atoi(listen); err == nil {
			if config.HTTP == nil {
				config.HTTP = &HTTPConfig{}
			}
			config.HTTP.Listen = i
		}
	}

	if enabled := os.Getenv(l.envPrefix + "JWT_AUTH_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.JWTAuth.Enabled = b
		}
	}
	if subjects := os.Getenv(l.envPrefix + "JWT_AUTH_SUBJECTS"); subjects != "" {
		config.JWTAuth.Subjects = subjects
	}
	if issuer := os.Getenv(l.envPrefix + "JWT_AUTH_ISSUER"); issuer != "" {
		config.JWTAuth.Issuer = issuer
	}
	if leeway := os.Getenv(l.envPrefix + "JWT_AUTH_LEEWAY"); leeway != "" {
		if d, err := time.ParseDuration(leeway); err == nil {
			config.JWTAuth.Leeway = d
		}
	}

	if enabled := os.Getenv(l.envPrefix + "NO_AUTH_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.NoAuth.Enabled = b
		}
	}

	if tcp := os.Getenv(l.envPrefix + "DNS_LISTEN_TCP"); tcp != "" {
		if i, err := strconv.Atoi(tcp); err == nil {
			config.DNS.ListenTCP = i
		}
	}
	if udp := os.Getenv(l.envPrefix + "DNS_LISTEN_UDP"); udp != "" {
		if i, err := strconv.Atoi(udp); err == nil {
			config.DNS.ListenUDP = i
		}
	}
	if enabled := os.Getenv(l.envPrefix + "DNS_CACHE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.DNS.Cache.Enabled = b
		}
	}
	if enabled := os.Getenv(l.envPrefix + "DNS_FORWARDING_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.DNS.Forwarding.Enabled = b
		}
	}
	if servers := os.Getenv(l.envPrefix + "DNS_FORWARDING_SERVERS"); servers != "" {
		parts := strings.Split(servers, ",")
		for i, server := range parts {
			parts[i] = strings.TrimSpace(server)
		}
		config.DNS.Forwarding.Servers = parts
	}
	if path := os.Getenv(l.envPrefix + "DNS_DATABASE_SQLITE_PATH"); path != "" {
		config.DNS.Database.SQLite.Path = path
	}
	if ttl := os.Getenv(l.envPrefix + "DNS_TTL"); ttl != "" {
		if i, err := strconv.ParseUint(ttl, 10, 32); err == nil {
			config.DNS.TTL = uint32(i)
		}
	}
	if domains := os.Getenv(l.envPrefix + "DNS_SOA_DOMAINS"); domains != "" {
		parts := strings.Split(domains, ",")
		for i, d := range parts {
			parts[i] = strings.TrimSpace(d)
		}
		config.DNS.SOADomains = parts
	}
	if verbosity := os.Getenv(l.envPrefix + "DNS_VERBOSITY"); verbosity != "" {
		if i, err := strconv.Atoi(verbosity); err == nil {
			config.DNS.Verbosity = i
		}
	}

	return nil
}

// SetConfigPaths sets the configuration file search paths
func (l *Loader) SetConfigPaths(paths []string) {
	l.configPaths = paths
}

// AddConfigPath adds a configuration file search path
func (l *Loader) AddConfigPath(path string) {
	l.configPaths = append(l.configPaths, path)
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// FindConfigFile searches for a configuration file in the configured paths
func (l *Loader) FindConfigFile() (string, error) {
	for _, path := range l.configPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no configuration file found in paths: %v", l.configPaths)
}

// CreateDefaultConfig creates a default configuration file
func (l *Loader) CreateDefaultConfig(path string) error {
	config := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return config.SaveToFile(path)
}
