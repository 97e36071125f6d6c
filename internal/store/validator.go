package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vadim-su/homedns/pkg/dns/records"
)

const (
	// MaxDomainNameLength is the maximum length of a domain name (253 characters)
	MaxDomainNameLength = 253
	// MaxLabelLength is the maximum length of a single label (63 characters)
	MaxLabelLength = 63
)

// ValidationConfig controls how strict a Validator is.
type ValidationConfig struct {
	Enabled         bool
	AllowUnderscore bool
}

// Validator validates DNS records and domain names before they reach a
// Store backend.
type Validator struct {
	enabled         bool
	allowUnderscore bool
	labelRegex      *regexp.Regexp
}

// NewValidator creates a Validator from configuration.
func NewValidator(config *ValidationConfig) *Validator {
	if config == nil {
		config = &ValidationConfig{Enabled: true}
	}

	v := &Validator{
		enabled:         config.Enabled,
		allowUnderscore: config.AllowUnderscore,
	}

	pattern := `^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`
	if v.allowUnderscore {
		pattern = `^[a-zA-Z0-9_]([a-zA-Z0-9-_]*[a-zA-Z0-9_])?$`
	}
	v.labelRegex = regexp.MustCompile(pattern)

	return v
}

// ValidateRecord validates a record's name and type-specific data.
// Unlike a generic DNS authority, an SOA record's serial is permitted to
// be 0 — the default synthesized by the authoritative resolver (see
// DESIGN.md) — so, unlike a strict zone-transfer validator, this one
// does not reject it.
func (v *Validator) ValidateRecord(record records.DNSRecord) error {
	if !v.enabled {
		return nil
	}

	if record == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}

	if err := v.ValidateName(record.Name()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return v.validateRecordData(record)
}

// ValidateName validates a domain name.
func (v *Validator) ValidateName(name string) error {
	if !v.enabled {
		return nil
	}

	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}

	name = strings.TrimSuffix(name, ".")
	if len(name) > MaxDomainNameLength {
		return fmt.Errorf("%w: exceeds maximum length of %d characters", ErrInvalidName, MaxDomainNameLength)
	}

	if name == "" {
		return nil
	}

	for _, label := range strings.Split(name, ".") {
		if err := v.validateLabel(label); err != nil {
			return fmt.Errorf("%w: invalid label '%s': %v", ErrInvalidName, label, err)
		}
	}

	return nil
}

func (v *Validator) validateLabel(label string) error {
	if len(label) == 0 {
		return fmt.Errorf("empty label")
	}
	if len(label) > MaxLabelLength {
		return fmt.Errorf("exceeds maximum length of %d characters", MaxLabelLength)
	}
	if label == "*" {
		return nil
	}
	if strings.HasPrefix(label, "_") && v.allowUnderscore {
		return nil
	}
	if !v.labelRegex.MatchString(label) {
		return fmt.Errorf("contains invalid characters")
	}
	return nil
}

func (v *Validator) validateRecordData(record records.DNSRecord) error {
	switch r := record.(type) {
	case *records.CNAMERecord:
		return v.ValidateName(r.Target())

	case *records.MXRecord:
		if r.Preference() > 65535 {
			return fmt.Errorf("MX preference must be 0-65535")
		}
		return v.ValidateName(r.MailServer())

	case *records.NSRecord:
		return v.ValidateName(r.NameServer())

	case *records.SOARecord:
		if err := v.ValidateName(r.PrimaryNS()); err != nil {
			return fmt.Errorf("invalid primary NS: %v", err)
		}
		if !strings.Contains(r.Responsible(), ".") {
			return fmt.Errorf("invalid responsible field: must be in email format")
		}
		return nil

	case *records.ARecord, *records.AAAARecord:
		return nil

	default:
		return nil
	}
}
