package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/vadim-su/homedns/pkg/dns/records"
	"github.com/vadim-su/homedns/pkg/dns/types"
)

// RecordConverter translates between records.DNSRecord and the flat row
// shape a persistence backend stores.
type RecordConverter struct{}

// NewRecordConverter creates a new RecordConverter.
func NewRecordConverter() *RecordConverter {
	return &RecordConverter{}
}

// RecordRow is the flat row a persistence backend stores: kind, fqdn,
// and a type-specific value column, plus the shared TTL and an
// UpdatedAt bookkeeping field.
type RecordRow struct {
	Kind      types.DNSType `json:"kind"`
	Name      string        `json:"name"`
	Value     string        `json:"value"`
	TTL       uint32        `json:"ttl"`
	UpdatedAt time.Time     `json:"updated_at,omitempty"`
}

// ToRow converts a DNS record to its row form.
func (c *RecordConverter) ToRow(record records.DNSRecord) (*RecordRow, error) {
	if record == nil {
		return nil, ErrInvalidRecord
	}

	return &RecordRow{
		Kind:  record.Type(),
		Name:  strings.ToLower(record.Name()),
		TTL:   record.TTL(),
		Value: c.formatValue(record),
	}, nil
}

// FromRow reconstructs a DNS record from its row form.
func (c *RecordConverter) FromRow(row *RecordRow) (records.DNSRecord, error) {
	if row == nil {
		return nil, ErrInvalidRecord
	}

	switch row.Kind {
	case types.TYPE_A:
		return records.NewARecordFromString(row.Name, row.Value, row.TTL)

	case types.TYPE_AAAA:
		return records.NewAAAARecordFromString(row.Name, row.Value, row.TTL)

	case types.TYPE_CNAME:
		return records.NewCNAMERecord(row.Name, row.Value, row.TTL), nil

	case types.TYPE_MX:
		return c.parseMX(row.Name, row.Value, row.TTL)

	case types.TYPE_NS:
		return records.NewNSRecord(row.Name, row.Value, row.TTL), nil

	case types.TYPE_SOA:
		return c.parseSOA(row.Name, row.Value, row.TTL)

	default:
		return nil, fmt.Errorf("%w: unsupported record kind %s", ErrInvalidRecord, row.Kind)
	}
}

// formatValue renders a record's type-specific data as a single text
// column suitable for storage.
func (c *RecordConverter) formatValue(record records.DNSRecord) string {
	switch r := record.(type) {
	case *records.ARecord:
		return r.IP().String()

	case *records.AAAARecord:
		return r.IP().String()

	case *records.CNAMERecord:
		return r.Target()

	case *records.MXRecord:
		return fmt.Sprintf("%d %s", r.Preference(), r.MailServer())

	case *records.NSRecord:
		return r.NameServer()

	case *records.SOARecord:
		return fmt.Sprintf("%s %s %d %d %d %d %d",
			r.PrimaryNS(), r.Responsible(), r.Serial(),
			int(r.Refresh().Seconds()), int(r.Retry().Seconds()),
			int(r.Expire().Seconds()), int(r.Minimum().Seconds()))

	default:
		return string(record.Data())
	}
}

func (c *RecordConverter) parseMX(name, value string, ttl uint32) (records.DNSRecord, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: invalid MX row format", ErrInvalidRecord)
	}

	var preference uint16
	if _, err := fmt.Sscanf(parts[0], "%d", &preference); err != nil {
		return nil, fmt.Errorf("%w: invalid MX preference: %v", ErrInvalidRecord, err)
	}

	return records.NewMXRecord(name, parts[1], preference, ttl), nil
}

func (c *RecordConverter) parseSOA(name, value string, ttl uint32) (records.DNSRecord, error) {
	parts := strings.Fields(value)
	if len(parts) != 7 {
		return nil, fmt.Errorf("%w: invalid SOA row format", ErrInvalidRecord)
	}

	var serial, refresh, retry, expire, minimum uint32
	if _, err := fmt.Sscanf(parts[2], "%d", &serial); err != nil {
		return nil, fmt.Errorf("%w: invalid SOA serial: %v", ErrInvalidRecord, err)
	}
	if _, err := fmt.Sscanf(parts[3], "%d", &refresh); err != nil {
		return nil, fmt.Errorf("%w: invalid SOA refresh: %v", ErrInvalidRecord, err)
	}
	if _, err := fmt.Sscanf(parts[4], "%d", &retry); err != nil {
		return nil, fmt.Errorf("%w: invalid SOA retry: %v", ErrInvalidRecord, err)
	}
	if _, err := fmt.Sscanf(parts[5], "%d", &expire); err != nil {
		return nil, fmt.Errorf("%w: invalid SOA expire: %v", ErrInvalidRecord, err)
	}
	if _, err := fmt.Sscanf(parts[6], "%d", &minimum); err != nil {
		return nil, fmt.Errorf("%w: invalid SOA minimum: %v", ErrInvalidRecord, err)
	}

	return records.NewSOARecord(
		name, parts[0], parts[1], serial,
		time.Duration(refresh)*time.Second,
		time.Duration(retry)*time.Second,
		time.Duration(expire)*time.Second,
		time.Duration(minimum)*time.Second,
		ttl,
	), nil
}
