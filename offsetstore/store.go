// Package offsetstore persists last-delivered offsets outside process memory
// so a named subscription can resume where it left off after a restart. The
// engine commits an offset after every delivered transaction; commits are
// monotonic, so a stale writer can never rewind the stored position.
package offsetstore

import (
	"context"
	"sync"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// Store loads and saves per-subscription offsets.
type Store interface {
	// Load returns the stored offset for the named subscription, with false
	// when none has been saved yet.
	Load(ctx context.Context, name string) (ledger.Offset, bool, error)

	// Save records the offset for the named subscription. Saving an offset
	// at or before the stored one is a no-op.
	Save(ctx context.Context, name string, off ledger.Offset) error

	// Close releases any underlying connections.
	Close() error
}

// MemoryStore keeps offsets in process memory. Useful in tests and as the
// explicit "no persistence" choice.
type MemoryStore struct {
	mu      sync.RWMutex
	offsets map[string]ledger.Offset
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory offset store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{offsets: make(map[string]ledger.Offset)}
}

func (s *MemoryStore) Load(_ context.Context, name string) (ledger.Offset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	off, ok := s.offsets[name]
	return off, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, name string, off ledger.Offset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.offsets[name]; ok && off.Compare(prev) <= 0 {
		return nil
	}
	s.offsets[name] = off
	return nil
}

func (s *MemoryStore) Close() error { return nil }
