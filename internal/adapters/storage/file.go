// Package storage persists account usage counters and the credit-monitoring
// log between runs. The default backend is a pair of JSON files under the
// output directory; a Postgres backend is available when DATABASE_URL is set.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/docoi/Smart-S/internal/domain"
)

// creditLogCap bounds the rolling credit-monitoring log.
const creditLogCap = 100

// Default file names under the output directory.
const (
	usageFileName     = "apify_usage_tracking.json"
	creditLogFileName = "credit_monitoring_log.json"
)

// FileStore reads and writes the tracking files atomically under a mutex.
type FileStore struct {
	mu        sync.Mutex
	usagePath string
	logPath   string
}

// NewFileStore creates the output directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &FileStore{
		usagePath: filepath.Join(dir, usageFileName),
		logPath:   filepath.Join(dir, creditLogFileName),
	}, nil
}

func (s *FileStore) LoadUsage() (map[string]*domain.AccountUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage := make(map[string]*domain.AccountUsage)
	if err := readJSON(s.usagePath, &usage); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.usagePath, err)
	}
	return usage, nil
}

func (s *FileStore) SaveUsage(usage map[string]*domain.AccountUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.usagePath, usage); err != nil {
		return fmt.Errorf("writing %s: %w", s.usagePath, err)
	}
	return nil
}

func (s *FileStore) AppendCreditSnapshot(snap domain.CreditSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var log []domain.CreditSnapshot
	if err := readJSON(s.logPath, &log); err != nil {
		return fmt.Errorf("reading %s: %w", s.logPath, err)
	}
	log = append(log, snap)
	if len(log) > creditLogCap {
		log = log[len(log)-creditLogCap:]
	}
	if err := writeJSON(s.logPath, log); err != nil {
		return fmt.Errorf("writing %s: %w", s.logPath, err)
	}
	return nil
}

func (s *FileStore) CreditSnapshots() ([]domain.CreditSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var log []domain.CreditSnapshot
	if err := readJSON(s.logPath, &log); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.logPath, err)
	}
	return log, nil
}

func (s *FileStore) Close() error { return nil }

// readJSON decodes path into v. A missing file leaves v untouched.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes v to path via a temp file rename so a crash mid-write
// never leaves a truncated tracking file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
