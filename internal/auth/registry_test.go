package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/uuid"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	return NewRegistry(filepath.Join(dir, "subjects.yaml"), filepath.Join(dir, "certs"))
}

func TestRegistry_AddSubjectGeneratesID(t *testing.T) {
	r := newTestRegistry(t)

	subject, err := r.AddSubject("", []byte("-----BEGIN CERTIFICATE-----\nfake\n-----END CERTIFICATE-----\n"))
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	if _, err := uuid.FromString(subject.ID); err != nil {
		t.Fatalf("expected a generated UUID, got %q", subject.ID)
	}

	if _, err := os.Stat(subject.CertificatePath); err != nil {
		t.Fatalf("expected certificate file to exist: %v", err)
	}
}

func TestRegistry_AddSubjectRejectsInvalidID(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.AddSubject("not-a-uuid", []byte("cert"))
	if !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestRegistry_AddSubjectRejectsDuplicate(t *testing.T) {
	r := newTestRegistry(t)

	subject, err := r.AddSubject("", []byte("cert"))
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	if _, err := r.AddSubject(subject.ID, []byte("cert")); !errors.Is(err, ErrSubjectExists) {
		t.Fatalf("expected ErrSubjectExists, got %v", err)
	}
}

func TestRegistry_GetSubjectRoundTrips(t *testing.T) {
	r := newTestRegistry(t)

	certPEM := []byte("certificate-bytes")
	subject, err := r.AddSubject("", certPEM)
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	got, cert, err := r.GetSubject(subject.ID)
	if err != nil {
		t.Fatalf("GetSubject failed: %v", err)
	}
	if got.ID != subject.ID {
		t.Fatalf("expected id %q, got %q", subject.ID, got.ID)
	}
	if string(cert) != string(certPEM) {
		t.Fatalf("expected certificate bytes to round-trip")
	}
}

func TestRegistry_RemoveSubjectDeletesCertificate(t *testing.T) {
	r := newTestRegistry(t)

	subject, err := r.AddSubject("", []byte("cert"))
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	if err := r.RemoveSubject(subject.ID); err != nil {
		t.Fatalf("RemoveSubject failed: %v", err)
	}

	if r.SubjectExists(subject.ID) {
		t.Fatalf("expected subject to no longer exist")
	}
	if _, err := os.Stat(subject.CertificatePath); !os.IsNotExist(err) {
		t.Fatalf("expected certificate file to be removed, stat err: %v", err)
	}
}

func TestRegistry_RemoveUnknownSubjectFails(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.RemoveSubject("00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestRegistry_ReloadsAfterExternalWrite(t *testing.T) {
	dir := t.TempDir()
	subjectsPath := filepath.Join(dir, "subjects.yaml")
	certDir := filepath.Join(dir, "certs")

	writer := NewRegistry(subjectsPath, certDir)
	subject, err := writer.AddSubject("", []byte("cert"))
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	reader := NewRegistry(subjectsPath, certDir)
	if !reader.SubjectExists(subject.ID) {
		t.Fatalf("expected a fresh Registry to see the subject written by another instance")
	}
}

func TestRegistry_ListSubjects(t *testing.T) {
	r := newTestRegistry(t)

	first, err := r.AddSubject("", []byte("cert-a"))
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}
	second, err := r.AddSubject("", []byte("cert-b"))
	if err != nil {
		t.Fatalf("AddSubject failed: %v", err)
	}

	list, err := r.ListSubjects()
	if err != nil {
		t.Fatalf("ListSubjects failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(list))
	}

	ids := map[string]bool{}
	for _, s := range list {
		ids[s.ID] = true
	}
	if !ids[first.ID] || !ids[second.ID] {
		t.Fatalf("expected both subjects in list, got %+v", list)
	}
}
