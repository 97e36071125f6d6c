package store

import (
	"context"
	"strings"
	"sync"

	"github.com/vadim-su/homedns/pkg/dns/records"
	"github.com/vadim-su/homedns/pkg/dns/types"
)

// MemoryStore implements Store over an in-memory map. A single mutex
// guards all access — unlike the teacher's RWMutex, a home-scale
// authority sees so little concurrent traffic that reader/writer
// separation buys nothing and only adds a second lock to reason about.
type MemoryStore struct {
	mu        sync.Mutex
	byName    map[string]map[types.DNSType][]records.DNSRecord
	validator *Validator
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(validation *ValidationConfig) *MemoryStore {
	return &MemoryStore{
		byName:    make(map[string]map[types.DNSType][]records.DNSRecord),
		validator: NewValidator(validation),
	}
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	if name != "" && name[len(name)-1] != '.' {
		name += "."
	}
	return name
}

// NameSearch returns stored records for name matching qtype, chasing a
// CNAME exactly one level when qtype is TYPE_A and only a CNAME is
// stored.
func (s *MemoryStore) NameSearch(ctx context.Context, name string, qtype types.DNSType) ([]records.DNSRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = normalizeName(name)
	byType, ok := s.byName[name]
	if !ok {
		return nil, nil
	}

	if direct, ok := byType[qtype]; ok && len(direct) > 0 {
		result := make([]records.DNSRecord, len(direct))
		copy(result, direct)
		return result, nil
	}

	if qtype != types.TYPE_A {
		return nil, nil
	}

	cnames, ok := byType[types.TYPE_CNAME]
	if !ok || len(cnames) == 0 {
		return nil, nil
	}

	result := make([]records.DNSRecord, 0, len(cnames)+1)
	result = append(result, cnames[0])

	target := normalizeName(cnames[0].(*records.CNAMERecord).Target())
	if targetByType, ok := s.byName[target]; ok {
		if targetA, ok := targetByType[types.TYPE_A]; ok {
			result = append(result, targetA...)
		}
	}

	return result, nil
}

// AddressSearch performs a linear scan over every stored A record
// looking for one whose address matches. Home-scale zones hold at most
// a few dozen hosts, so a reverse index would add bookkeeping for no
// measurable benefit.
func (s *MemoryStore) AddressSearch(ctx context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, byType := range s.byName {
		for _, rec := range byType[types.TYPE_A] {
			a, ok := rec.(*records.ARecord)
			if !ok {
				continue
			}
			if a.IP().String() == address {
				return strings.TrimSuffix(name, "."), nil
			}
		}
	}

	return "", ErrRecordNotFound
}

// GetRecordByHostname returns the single stored record of kind for hostname.
func (s *MemoryStore) GetRecordByHostname(ctx context.Context, hostname string, kind types.DNSType) (records.DNSRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hostname = normalizeName(hostname)
	byType, ok := s.byName[hostname]
	if !ok {
		return nil, ErrRecordNotFound
	}

	recs, ok := byType[kind]
	if !ok || len(recs) == 0 {
		return nil, ErrRecordNotFound
	}

	return recs[0], nil
}

// CreateRecord stores record, failing if one of the same name and type
// already exists.
func (s *MemoryStore) CreateRecord(ctx context.Context, record records.DNSRecord) error {
	if err := s.validator.ValidateRecord(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := normalizeName(record.Name())
	if byType, ok := s.byName[name]; ok {
		if recs, ok := byType[record.Type()]; ok && len(recs) > 0 {
			return ErrRecordExists
		}
	}

	if s.byName[name] == nil {
		s.byName[name] = make(map[types.DNSType][]records.DNSRecord)
	}
	s.byName[name][record.Type()] = []records.DNSRecord{record}

	return nil
}

// UpdateRecord replaces the stored record matching record's name and
// type, failing if none exists.
func (s *MemoryStore) UpdateRecord(ctx context.Context, record records.DNSRecord) error {
	if err := s.validator.ValidateRecord(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := normalizeName(record.Name())
	byType, ok := s.byName[name]
	if !ok {
		return ErrRecordNotFound
	}

	if _, ok := byType[record.Type()]; !ok {
		return ErrRecordNotFound
	}

	byType[record.Type()] = []records.DNSRecord{record}
	return nil
}

// DeleteRecordByHostname removes the record of kind stored for hostname.
func (s *MemoryStore) DeleteRecordByHostname(ctx context.Context, hostname string, kind types.DNSType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hostname = normalizeName(hostname)
	byType, ok := s.byName[hostname]
	if !ok {
		return ErrRecordNotFound
	}

	if _, ok := byType[kind]; !ok {
		return ErrRecordNotFound
	}

	delete(byType, kind)
	if len(byType) == 0 {
		delete(s.byName, hostname)
	}

	return nil
}

// Close is a no-op for MemoryStore; it satisfies the Store interface.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
