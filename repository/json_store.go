package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"drawbot/domain"
	"drawbot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// DefaultStatePath is where the JSON store keeps its document unless configured otherwise
const DefaultStatePath = "data/lotteries.json"

// JSONStore persists the lottery state as a single indented JSON file. Writes go to a
// temporary file in the same directory which is synced and renamed over the document, so
// a crash leaves either the previous or the new document on disk.
//
// Update is serialized within one process only. Two processes sharing a file race and the
// last write wins.
type JSONStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// StoreOption customizes a store
type StoreOption func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the time source used for lastUpdated
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		o.now = now
	}
}

func applyOptions(opts []StoreOption) storeOptions {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewJSONStore creates a store backed by the file at path, creating its directory if needed
func NewJSONStore(path string, opts ...StoreOption) (*JSONStore, error) {
	if path == "" {
		path = DefaultStatePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.PersistenceError{Op: "init", Err: err}
	}

	o := applyOptions(opts)
	return &JSONStore{path: path, now: o.now}, nil
}

// Path returns the document location
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the current document. A missing or empty file yields an empty state.
func (s *JSONStore) Load(ctx context.Context) (*entities.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Update applies fn to the current document and writes the result atomically
func (s *JSONStore) Update(ctx context.Context, fn func(state *entities.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readLocked()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}

	state.LastUpdated = s.now().UTC()
	data, err := encodeState(state)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Err: err}
	}
	if err := s.writeLocked(data); err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}

	log.WithFields(log.Fields{
		"path":    s.path,
		"active":  len(state.ActiveLotteries),
		"results": len(state.Results),
		"rerolls": len(state.Rerolls),
	}).Debug("Saved lottery state")

	return nil
}

// Close is a no-op; the store holds no open handles between calls
func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) readLocked() (*entities.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.NewState(), nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entities.NewState(), nil
	}

	state, err := decodeState(data)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	return state, nil
}

func (s *JSONStore) writeLocked(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	if d, err := os.Open(dir); err == nil {
		if err := d.Sync(); err != nil {
			log.WithError(err).WithField("dir", dir).Debug("Failed to sync state directory")
		}
		d.Close()
	}
	return nil
}

func encodeState(state *entities.State) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeState(data []byte) (*entities.State, error) {
	state := entities.NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	state.Normalize()
	return state, nil
}
