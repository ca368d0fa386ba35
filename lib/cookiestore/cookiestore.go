// Package cookiestore persists session cookies to a file so logins
// survive across invocations. The file is held under an exclusive
// advisory lock for the whole lifetime of the store, which keeps two
// concurrent invocations from clobbering each other's session.
package cookiestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by Open when another process already holds the
// cookie file. Open never waits for the lock.
var ErrLocked = errors.New("cookie file is locked by another process")

// Record is one persisted cookie. Records are unique by
// (Name, Domain, Path); merging a cookie with the same key replaces
// the stored value.
type Record struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// Store is a file-backed cookie set. Every mutation rewrites the whole
// file before returning, so cookies from a response are durable before
// the next request goes out.
type Store struct {
	mu      sync.Mutex
	path    string
	lock    *flock.Flock
	records []Record
}

// Open locks path and loads the records in it. A missing file is
// created, along with its parent directories, and written as an empty
// set right away. Open fails fast with ErrLocked when the file is
// already held elsewhere.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create cookie directory for %s: %w", path, err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock cookie file %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	s := &Store{path: path, lock: lock}
	data, err := os.ReadFile(path)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("read cookie file %s: %w", path, err)
	}
	if len(data) == 0 {
		if err := s.save(); err != nil {
			lock.Unlock()
			return nil, err
		}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("parse cookie file %s: %w", path, err)
	}
	return s, nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Len returns how many cookies are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// All returns a copy of every stored record.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Cookies returns the stored cookies that apply to host. A record
// matches when its domain equals host or is a parent domain of it;
// records without a domain match every host.
func (s *Store) Cookies(host string) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cookies []*http.Cookie
	for _, r := range s.records {
		if !domainMatches(host, r.Domain) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     r.Name,
			Value:    r.Value,
			Domain:   r.Domain,
			Path:     r.Path,
			Expires:  r.Expires,
			Secure:   r.Secure,
			HttpOnly: r.HttpOnly,
		})
	}
	return cookies
}

func domainMatches(host, domain string) bool {
	if domain == "" {
		return true
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Merge stores cookies received from host, replacing records that
// share (name, domain, path), and rewrites the file. Cookies that did
// not name a domain are recorded under host.
func (s *Store) Merge(host string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cookies {
		record := Record{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   strings.TrimPrefix(c.Domain, "."),
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if record.Domain == "" {
			record.Domain = host
		}
		replaced := false
		for i, existing := range s.records {
			if existing.Name == record.Name &&
				existing.Domain == record.Domain &&
				existing.Path == record.Path {
				s.records[i] = record
				replaced = true
				break
			}
		}
		if !replaced {
			s.records = append(s.records, record)
		}
	}
	return s.save()
}

// Clear drops every cookie and rewrites the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return s.save()
}

// Close releases the file lock. The store must not be used after.
func (s *Store) Close() error {
	return s.lock.Unlock()
}

func (s *Store) save() error {
	records := s.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize cookies: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file %s: %w", s.path, err)
	}
	return nil
}
