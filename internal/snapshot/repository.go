package snapshot

import (
	"context"
	"sync"
)

// Repository stores comparison snapshots.
type Repository interface {
	Save(ctx context.Context, s Snapshot) error
	// List returns up to limit snapshots, newest first.
	List(ctx context.Context, limit int) ([]Snapshot, error)
}

// InMemoryRepository keeps the most recent snapshots in process memory.
// Once full, the oldest snapshot is dropped on every Save.
type InMemoryRepository struct {
	mu       sync.RWMutex
	storage  []Snapshot
	capacity int
}

func NewInMemoryRepository(capacity int) *InMemoryRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &InMemoryRepository{
		storage:  make([]Snapshot, 0, capacity),
		capacity: capacity,
	}
}

func (r *InMemoryRepository) Save(_ context.Context, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.storage) == r.capacity {
		copy(r.storage, r.storage[1:])
		r.storage = r.storage[:len(r.storage)-1]
	}
	r.storage = append(r.storage, s)
	return nil
}

func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.storage) {
		limit = len(r.storage)
	}
	out := make([]Snapshot, 0, limit)
	for i := len(r.storage) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.storage[i])
	}
	return out, nil
}
