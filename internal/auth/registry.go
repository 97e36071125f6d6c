// Package auth implements the JWT subject registry and Bearer-token
// authenticator: the on-disk mapping of subject UUID to public
// certificate, and the request-time verification pipeline that checks
// a token's signature and claims against it.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"gopkg.in/yaml.v3"
)

// Sentinel errors surfaced to the authenticator and REST layer.
var (
	ErrInvalidSubject     = errors.New("invalid subject")
	ErrSubjectExists      = errors.New("subject already exists")
	ErrCertificateMissing = errors.New("certificate missing")
)

// Subject is one entry in the registry: a principal allowed to
// authenticate, identified by UUID, with a PEM-encoded public key on
// disk used to verify its tokens.
type Subject struct {
	ID              string    `yaml:"id"`
	CertificatePath string    `yaml:"certificate_path"`
	CreatedAt       time.Time `yaml:"created_at"`
}

// registryFile is the on-disk shape of the registry YAML.
type registryFile struct {
	Subjects map[string]Subject `yaml:"subjects"`
}

const registryFileMode = 0640

// Registry persists the subject→certificate mapping in a YAML file
// plus a directory of PEM files, polling the YAML file's mtime on
// access so concurrent readers see writes from the admin CLI without a
// restart.
type Registry struct {
	path    string
	certDir string

	mu       sync.Mutex
	subjects map[string]Subject
	mtime    time.Time
	loaded   bool
}

// NewRegistry opens (without requiring it to exist yet) the registry at
// path, storing certificates in certDir.
func NewRegistry(path, certDir string) *Registry {
	return &Registry{path: path, certDir: certDir}
}

// maybeReload reloads the registry file if its mtime has advanced since
// the last load, per spec §9's hot-reload-on-access design. A reader
// that just missed a write may operate on a stale view for up to one
// access; that staleness window is accepted.
func (r *Registry) maybeReload() error {
	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			if !r.loaded {
				r.subjects = map[string]Subject{}
				r.loaded = true
			}
			return nil
		}
		return fmt.Errorf("failed to stat registry file: %w", err)
	}

	if r.loaded && !info.ModTime().After(r.mtime) {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read registry file: %w", err)
	}

	var file registryFile
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse registry file: %w", err)
		}
	}
	if file.Subjects == nil {
		file.Subjects = map[string]Subject{}
	}

	r.subjects = file.Subjects
	r.mtime = info.ModTime()
	r.loaded = true
	return nil
}

// save writes the registry atomically enough for single-host use: write
// the full file, then rely on the caller's all-or-nothing sequencing
// around the certificate file.
func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0750); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := yaml.Marshal(registryFile{Subjects: r.subjects})
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.WriteFile(r.path, data, registryFileMode); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	info, err := os.Stat(r.path)
	if err == nil {
		r.mtime = info.ModTime()
	}
	return nil
}

// certPath returns the on-disk path for subject id's certificate.
func (r *Registry) certPath(id string) string {
	return filepath.Join(r.certDir, id+".crt")
}

// AddSubject registers a new subject with the given public-key PEM
// bytes. If id is empty, a UUID is generated. Write order is
// certificate-then-registry, with the certificate unlinked if the
// registry update fails, per spec §4.5's write-all-or-nothing
// invariant.
func (r *Registry) AddSubject(id string, certPEM []byte) (Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.maybeReload(); err != nil {
		return Subject{}, err
	}

	if id == "" {
		generated, err := uuid.NewV4()
		if err != nil {
			return Subject{}, fmt.Errorf("failed to generate subject id: %w", err)
		}
		id = generated.String()
	} else if _, err := uuid.FromString(id); err != nil {
		return Subject{}, fmt.Errorf("%w: %s is not a valid UUID", ErrInvalidSubject, id)
	}

	if _, exists := r.subjects[id]; exists {
		return Subject{}, fmt.Errorf("%w: %s", ErrSubjectExists, id)
	}

	if err := os.MkdirAll(r.certDir, 0750); err != nil {
		return Subject{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	path := r.certPath(id)
	if err := os.WriteFile(path, certPEM, registryFileMode); err != nil {
		return Subject{}, fmt.Errorf("failed to write certificate: %w", err)
	}

	subject := Subject{ID: id, CertificatePath: path, CreatedAt: time.Now()}
	r.subjects[id] = subject

	if err := r.save(); err != nil {
		os.Remove(path)
		delete(r.subjects, id)
		return Subject{}, err
	}

	return subject, nil
}

// RemoveSubject removes id from the registry, then unlinks its
// certificate, in that order, so a crash between the two steps leaves
// an orphaned certificate file rather than a registry entry pointing
// at nothing.
func (r *Registry) RemoveSubject(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.maybeReload(); err != nil {
		return err
	}

	subject, exists := r.subjects[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrInvalidSubject, id)
	}

	delete(r.subjects, id)
	if err := r.save(); err != nil {
		r.subjects[id] = subject
		return err
	}

	os.Remove(subject.CertificatePath)
	return nil
}

// GetSubject returns subject metadata and the raw certificate bytes.
func (r *Registry) GetSubject(id string) (Subject, []byte, error) {
	subject, err := r.lookupSubject(id)
	if err != nil {
		return Subject{}, nil, err
	}

	cert, err := os.ReadFile(subject.CertificatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Subject{}, nil, fmt.Errorf("%w: %s", ErrCertificateMissing, subject.CertificatePath)
		}
		return Subject{}, nil, fmt.Errorf("failed to read certificate: %w", err)
	}

	return subject, cert, nil
}

// lookupSubject reloads the registry and returns the named subject's
// metadata under the registry lock.
func (r *Registry) lookupSubject(id string) (Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.maybeReload(); err != nil {
		return Subject{}, err
	}

	subject, exists := r.subjects[id]
	if !exists {
		return Subject{}, fmt.Errorf("%w: %s", ErrInvalidSubject, id)
	}
	return subject, nil
}

// SubjectExists reports whether id is currently registered.
func (r *Registry) SubjectExists(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.maybeReload(); err != nil {
		return false
	}
	_, exists := r.subjects[id]
	return exists
}

// ListSubjects returns every registered subject, sorted by ID is not
// guaranteed; callers that need stable order should sort the result.
func (r *Registry) ListSubjects() ([]Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.maybeReload(); err != nil {
		return nil, err
	}

	subjects := make([]Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		subjects = append(subjects, s)
	}
	return subjects, nil
}
