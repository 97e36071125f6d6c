package store_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim-su/homedns/internal/store"
	"github.com/vadim-su/homedns/pkg/dns/records"
)

func TestValidator_NameLengthLimits(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	assert.NoError(t, v.ValidateName("host.example.com"))
	assert.NoError(t, v.ValidateName("host.example.com."))
	assert.ErrorIs(t, v.ValidateName(""), store.ErrInvalidName)

	longName := strings.Repeat("a.", 127) + "com"
	assert.ErrorIs(t, v.ValidateName(longName), store.ErrInvalidName)
}

func TestValidator_LabelLengthLimit(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	okLabel := strings.Repeat("a", store.MaxLabelLength)
	assert.NoError(t, v.ValidateName(okLabel+".example.com"))

	tooLong := strings.Repeat("a", store.MaxLabelLength+1)
	assert.ErrorIs(t, v.ValidateName(tooLong+".example.com"), store.ErrInvalidName)
}

func TestValidator_EmptyLabelRejected(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})
	assert.ErrorIs(t, v.ValidateName("invalid..name"), store.ErrInvalidName)
}

func TestValidator_WildcardLabelAllowed(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})
	assert.NoError(t, v.ValidateName("*.example.com"))
}

func TestValidator_UnderscoreLabel(t *testing.T) {
	strict := store.NewValidator(&store.ValidationConfig{Enabled: true, AllowUnderscore: false})
	assert.Error(t, strict.ValidateName("_dmarc.example.com"))

	lenient := store.NewValidator(&store.ValidationConfig{Enabled: true, AllowUnderscore: true})
	assert.NoError(t, lenient.ValidateName("_dmarc.example.com"))
}

func TestValidator_DisabledSkipsAllChecks(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: false})
	assert.NoError(t, v.ValidateName(""))
	assert.NoError(t, v.ValidateName("invalid..name"))
}

func TestValidator_NilConfigDefaultsToEnabled(t *testing.T) {
	v := store.NewValidator(nil)
	assert.ErrorIs(t, v.ValidateName(""), store.ErrInvalidName)
}

func TestValidator_ValidateRecordRejectsNil(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})
	assert.ErrorIs(t, v.ValidateRecord(nil), store.ErrInvalidRecord)
}

func TestValidator_CNAMETargetMustBeValidName(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	good := records.NewCNAMERecord("www.example.com", "host.example.com", 300)
	assert.NoError(t, v.ValidateRecord(good))

	bad := records.NewCNAMERecord("www.example.com", "invalid..target", 300)
	assert.ErrorIs(t, v.ValidateRecord(bad), store.ErrInvalidRecord)
}

func TestValidator_MXPreferenceAndMailServer(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	good := records.NewMXRecord("example.com", "mail.example.com", 10, 300)
	assert.NoError(t, v.ValidateRecord(good))

	badServer := records.NewMXRecord("example.com", "invalid..mail", 10, 300)
	assert.ErrorIs(t, v.ValidateRecord(badServer), store.ErrInvalidRecord)
}

func TestValidator_SOARequiresValidPrimaryNSAndResponsible(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	good := records.NewSOARecord(
		"example.com", "ns1.example.com", "admin.example.com",
		0, 46800, 6200, 3000000, 300, 3600,
	)
	assert.NoError(t, v.ValidateRecord(good))

	badResponsible := records.NewSOARecord(
		"example.com", "ns1.example.com", "admin-without-dot",
		0, 46800, 6200, 3000000, 300, 3600,
	)
	assert.Error(t, v.ValidateRecord(badResponsible))
}

func TestValidator_SOASerialZeroIsPermitted(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	soa := records.NewSOARecord(
		"example.com", "ns1.example.com", "admin.example.com",
		0, 46800, 6200, 3000000, 300, 3600,
	)
	require.NoError(t, v.ValidateRecord(soa))
}

func TestValidator_AAndAAAARecordsAlwaysPassDataValidation(t *testing.T) {
	v := store.NewValidator(&store.ValidationConfig{Enabled: true})

	a, err := records.NewARecordFromString("host.example.com", "192.0.2.1", 300)
	require.NoError(t, err)
	assert.NoError(t, v.ValidateRecord(a))

	aaaa, err := records.NewAAAARecordFromString("host.example.com", "2001:db8::1", 300)
	require.NoError(t, err)
	assert.NoError(t, v.ValidateRecord(aaaa))
}
