package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/vadim-su/homedns/pkg/dns/records"
	"github.com/vadim-su/homedns/pkg/dns/types"
)

// SurrealStore implements Store on top of an embedded SurrealDB
// instance. The dns.database.sqlite.path configuration value is handed
// to SurrealDB's file-backed endpoint — see DESIGN.md for why this
// repository does not carry a separate sqlite driver.
type SurrealStore struct {
	db        *surrealdb.DB
	validator *Validator
	converter *RecordConverter
	closed    bool
}

// NewSurrealStore connects to an embedded SurrealDB instance rooted at
// cfg.SQLitePath and ensures the dns_records table/indexes exist.
func NewSurrealStore(ctx context.Context, cfg Config) (*SurrealStore, error) {
	endpoint := "surrealkv://" + cfg.SQLitePath

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to open surreal store at %s: %w", cfg.SQLitePath, err)
	}

	if err := db.Use(ctx, "homedns", "records"); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s := &SurrealStore{
		db:        db,
		validator: NewValidator(cfg.Validation),
		converter: NewRecordConverter(),
	}

	if err := s.initSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SurrealStore) initSchema(ctx context.Context) error {
	schemaQueries := []string{
		`DEFINE TABLE IF NOT EXISTS dns_records SCHEMAFULL;`,
		`DEFINE FIELD IF NOT EXISTS name ON dns_records TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS kind ON dns_records TYPE int;`,
		`DEFINE FIELD IF NOT EXISTS ttl ON dns_records TYPE int;`,
		`DEFINE FIELD IF NOT EXISTS value ON dns_records TYPE string;`,
		`DEFINE FIELD IF NOT EXISTS updated_at ON dns_records TYPE datetime DEFAULT time::now();`,
		`DEFINE INDEX IF NOT EXISTS name_kind_idx ON dns_records FIELDS name, kind UNIQUE;`,
	}

	for _, query := range schemaQueries {
		if _, err := surrealdb.Query[any](ctx, s.db, query, nil); err != nil {
			return err
		}
	}

	return nil
}

type surrealRow struct {
	ID        any       `json:"id,omitempty"`
	Name      string    `json:"name"`
	Kind      int       `json:"kind"`
	TTL       uint32    `json:"ttl"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (s *SurrealStore) toRecords(rows []surrealRow) []records.DNSRecord {
	result := make([]records.DNSRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := s.converter.FromRow(&RecordRow{
			Kind:  types.DNSType(row.Kind),
			Name:  row.Name,
			Value: row.Value,
			TTL:   row.TTL,
		})
		if err != nil {
			continue
		}
		result = append(result, rec)
	}
	return result
}

func (s *SurrealStore) queryByName(ctx context.Context, name string, kind types.DNSType) ([]records.DNSRecord, error) {
	name = normalizeName(name)

	var query string
	vars := map[string]any{"name": name}
	if kind == 0 {
		query = "SELECT * FROM dns_records WHERE name = $name"
	} else {
		query = "SELECT * FROM dns_records WHERE name = $name AND kind = $kind"
		vars["kind"] = int(kind)
	}

	result, err := surrealdb.Query[[]surrealRow](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(*result) == 0 {
		return nil, nil
	}

	return s.toRecords((*result)[0].Result), nil
}

// NameSearch returns stored records for name matching qtype, chasing a
// CNAME one level as MemoryStore does.
func (s *SurrealStore) NameSearch(ctx context.Context, name string, qtype types.DNSType) ([]records.DNSRecord, error) {
	direct, err := s.queryByName(ctx, name, qtype)
	if err != nil {
		return nil, err
	}
	if len(direct) > 0 || qtype != types.TYPE_A {
		return direct, nil
	}

	cnames, err := s.queryByName(ctx, name, types.TYPE_CNAME)
	if err != nil {
		return nil, err
	}
	if len(cnames) == 0 {
		return nil, nil
	}

	result := append([]records.DNSRecord{}, cnames[0])
	target := cnames[0].(*records.CNAMERecord).Target()
	targetA, err := s.queryByName(ctx, target, types.TYPE_A)
	if err != nil {
		return nil, err
	}
	result = append(result, targetA...)

	return result, nil
}

// AddressSearch looks up the hostname whose A record matches address.
func (s *SurrealStore) AddressSearch(ctx context.Context, address string) (string, error) {
	query := "SELECT * FROM dns_records WHERE kind = $kind AND value = $value LIMIT 1"
	result, err := surrealdb.Query[[]surrealRow](ctx, s.db, query, map[string]any{
		"kind":  int(types.TYPE_A),
		"value": address,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(*result) == 0 || len((*result)[0].Result) == 0 {
		return "", ErrRecordNotFound
	}

	return strings.TrimSuffix((*result)[0].Result[0].Name, "."), nil
}

// GetRecordByHostname returns the single stored record of kind for hostname.
func (s *SurrealStore) GetRecordByHostname(ctx context.Context, hostname string, kind types.DNSType) (records.DNSRecord, error) {
	recs, err := s.queryByName(ctx, hostname, kind)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrRecordNotFound
	}
	return recs[0], nil
}

// CreateRecord stores record, failing with ErrRecordExists if one of
// the same name and kind is already present.
func (s *SurrealStore) CreateRecord(ctx context.Context, record records.DNSRecord) error {
	if err := s.validator.ValidateRecord(record); err != nil {
		return err
	}

	existing, err := s.queryByName(ctx, record.Name(), record.Type())
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrRecordExists
	}

	return s.upsert(ctx, record)
}

// UpdateRecord replaces the stored record matching record's name and
// type, failing with ErrRecordNotFound if none exists.
func (s *SurrealStore) UpdateRecord(ctx context.Context, record records.DNSRecord) error {
	if err := s.validator.ValidateRecord(record); err != nil {
		return err
	}

	existing, err := s.queryByName(ctx, record.Name(), record.Type())
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return ErrRecordNotFound
	}

	return s.upsert(ctx, record)
}

func (s *SurrealStore) upsert(ctx context.Context, record records.DNSRecord) error {
	row, err := s.converter.ToRow(record)
	if err != nil {
		return err
	}

	query := `
		UPSERT dns_records
		SET name = $name, kind = $kind, ttl = $ttl, value = $value, updated_at = time::now()
		WHERE name = $name AND kind = $kind
	`

	_, err = surrealdb.Query[any](ctx, s.db, query, map[string]any{
		"name":  row.Name,
		"kind":  int(row.Kind),
		"ttl":   row.TTL,
		"value": row.Value,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// DeleteRecordByHostname removes the record of kind for hostname.
func (s *SurrealStore) DeleteRecordByHostname(ctx context.Context, hostname string, kind types.DNSType) error {
	existing, err := s.queryByName(ctx, hostname, kind)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return ErrRecordNotFound
	}

	query := "DELETE FROM dns_records WHERE name = $name AND kind = $kind"
	_, err = surrealdb.Query[any](ctx, s.db, query, map[string]any{
		"name": normalizeName(hostname),
		"kind": int(kind),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Close closes the underlying SurrealDB connection.
func (s *SurrealStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close(context.Background())
}

var _ Store = (*SurrealStore)(nil)
