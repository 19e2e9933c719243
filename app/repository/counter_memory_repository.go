package repository

import (
	"context"
	"sync"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// memoryCounterRepository keeps counts in process memory (development).
type memoryCounterRepository struct {
	mu     sync.RWMutex
	counts map[string]tally.Record
}

// NewMemoryCounterRepository creates an empty in-memory store
func NewMemoryCounterRepository() CounterRepository {
	return &memoryCounterRepository{counts: make(map[string]tally.Record)}
}

func (r *memoryCounterRepository) Get(_ context.Context, date string) (*tally.Stored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.counts[date]
	if !ok {
		return nil, nil
	}
	stored := tally.StoredOf(rec)
	return &stored, nil
}

func (r *memoryCounterRepository) Save(_ context.Context, rec tally.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[rec.Date] = rec
	return nil
}

func (r *memoryCounterRepository) Reset(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.counts))
	r.counts = make(map[string]tally.Record)
	return n, nil
}

func (r *memoryCounterRepository) Driver() string {
	return DriverMemory
}
