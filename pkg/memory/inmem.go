package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps threads in a map. It backs tests and short-lived runs
// that do not need durability.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string]Thread
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[string]Thread)}
}

// GetThreadByID fetches a thread or ErrThreadNotFound.
func (s *InMemoryStore) GetThreadByID(_ context.Context, id string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.threads[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}
	return &thread, nil
}

// CreateThread registers a thread, generating an id when absent.
func (s *InMemoryStore) CreateThread(_ context.Context, thread *Thread) (*Thread, error) {
	if thread == nil {
		return nil, fmt.Errorf("memory: thread is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *thread
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, exists := s.threads[created.ID]; exists {
		return nil, fmt.Errorf("memory: thread %s already exists", created.ID)
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	s.threads[created.ID] = created
	return &created, nil
}

// Len reports the number of stored threads.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads)
}
