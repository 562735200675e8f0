// Package lock serialises confirmations of one upload batch.
package lock

import (
	"context"
	"sync"

	"eraport-ingestion/pkg/errors"
)

// Locker takes a named lock. Acquire fails with errors.ErrBatchLocked when
// the lock is already held. release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemoryLocker holds locks in process. It is used when redis is disabled.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

func (m *MemoryLocker) Acquire(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held[key] {
		return nil, errors.ErrBatchLocked
	}
	m.held[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}, nil
}
