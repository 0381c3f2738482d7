package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"drawbot/domain"
	"drawbot/domain/entities"
)

// MemoryStore is an in-process LotteryStore for tests. Every Load and Update works on a
// JSON round-tripped copy so tests observe the same isolation as the file store.
type MemoryStore struct {
	mu       sync.Mutex
	data     []byte
	FailNext error
	Writes   int
}

// NewMemoryStore creates a store holding an empty state
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*entities.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decode()
}

func (s *MemoryStore) Update(ctx context.Context, fn func(state *entities.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.decode()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return &domain.PersistenceError{Op: "write", Err: err}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Err: err}
	}
	s.data = data
	s.Writes++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Seed replaces the stored state
func (s *MemoryStore) Seed(state *entities.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(state)
	if err != nil {
		panic(fmt.Sprintf("failed to seed memory store: %v", err))
	}
	s.data = data
}

func (s *MemoryStore) decode() (*entities.State, error) {
	state := entities.NewState()
	if s.data == nil {
		return state, nil
	}
	if err := json.Unmarshal(s.data, state); err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Err: err}
	}
	state.Normalize()
	return state, nil
}
