// Package store holds the authoritative DNS record set: the single
// source of truth consulted by the resolver chain and mutated by the
// REST API. Two backends are provided — MemoryStore for tests and
// small deployments, SurrealStore for persistence across restarts.
package store

import (
	"context"
	"errors"

	"github.com/vadim-su/homedns/pkg/dns/records"
	"github.com/vadim-su/homedns/pkg/dns/types"
)

var (
	// ErrRecordNotFound is returned by get/update/delete when no matching
	// record exists.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordExists is returned by CreateRecord when a record with the
	// same name and type is already stored, whatever its data.
	ErrRecordExists = errors.New("record already exists")
	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidName is returned when a domain name fails validation.
	ErrInvalidName = errors.New("invalid domain name")
	// ErrUnavailable is returned when the backing store cannot currently
	// be reached. Callers that can retry (the authoritative resolver)
	// should do so on a fixed schedule before giving up.
	ErrUnavailable = errors.New("store unavailable")
)

// Store is the record-store contract consumed by the resolver and the
// REST API. Name arguments are accepted in either case and with or
// without a trailing dot; implementations normalize internally.
type Store interface {
	// NameSearch returns every stored record for name matching qtype.
	// If qtype is TYPE_A and no A record is stored but a CNAME is, the
	// CNAME is chased exactly one level and its target's A records (if
	// any) are appended to the result alongside the CNAME itself.
	NameSearch(ctx context.Context, name string, qtype types.DNSType) ([]records.DNSRecord, error)

	// AddressSearch returns the hostname whose A record carries the
	// given dotted-decimal IPv4 address, or ErrRecordNotFound.
	AddressSearch(ctx context.Context, address string) (string, error)

	// GetRecordByHostname returns the single stored record of kind for
	// hostname, or ErrRecordNotFound.
	GetRecordByHostname(ctx context.Context, hostname string, kind types.DNSType) (records.DNSRecord, error)

	// CreateRecord stores record. It fails with ErrRecordExists if a
	// record with the same name and type is already present, even one
	// with different data: a name holds at most one record of each type.
	CreateRecord(ctx context.Context, record records.DNSRecord) error

	// UpdateRecord replaces the stored record matching record's name and
	// type. It fails with ErrRecordNotFound if none exists.
	UpdateRecord(ctx context.Context, record records.DNSRecord) error

	// DeleteRecordByHostname removes the record of kind stored for
	// hostname. It fails with ErrRecordNotFound if none exists.
	DeleteRecordByHostname(ctx context.Context, hostname string, kind types.DNSType) error

	// Close releases any resources held by the store.
	Close() error
}

// Config selects and configures a Store backend.
type Config struct {
	Backend    Backend
	SQLitePath string
	Validation *ValidationConfig
}

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendSurreal Backend = "surreal"
)

// New constructs a Store for the given configuration.
func New(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Validation == nil {
		cfg.Validation = &ValidationConfig{Enabled: true}
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(cfg.Validation), nil
	case BackendSurreal:
		return NewSurrealStore(ctx, cfg)
	default:
		return nil, errors.New("unsupported store backend: " + string(cfg.Backend))
	}
}
