package store

import (
	"context"
	"testing"
	"time"

	"github.com/vadim-su/homedns/pkg/dns/records"
)

// CreateTestRecords creates a representative set of DNS records for tests.
func CreateTestRecords(t *testing.T) []records.DNSRecord {
	t.Helper()
	testRecords := []records.DNSRecord{}

	if r, err := records.NewARecordFromString("host.example.com", "192.168.1.10", 300); err == nil {
		testRecords = append(testRecords, r)
	}
	if r, err := records.NewAAAARecordFromString("host.example.com", "2001:db8::10", 300); err == nil {
		testRecords = append(testRecords, r)
	}
	testRecords = append(testRecords, records.NewCNAMERecord("alias.example.com", "host.example.com", 300))
	testRecords = append(testRecords, records.NewMXRecord("example.com", "mail.example.com", 10, 300))
	testRecords = append(testRecords, records.NewNSRecord("example.com", "ns1.example.com", 300))
	testRecords = append(testRecords, records.NewSOARecord(
		"example.com", "ns1.example.com", "admin.example.com",
		0, 46800*time.Second, 6200*time.Second, 3000000*time.Second, 300*time.Second, 3600,
	))

	return testRecords
}

// PopulateStore adds test records to a Store via CreateRecord.
func PopulateStore(t *testing.T, s Store, recs []records.DNSRecord) {
	t.Helper()
	ctx := context.Background()
	for _, record := range recs {
		if err := s.CreateRecord(ctx, record); err != nil {
			t.Fatalf("failed to populate store with record %s: %v", record.Name(), err)
		}
	}
}
