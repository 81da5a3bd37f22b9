package keystore

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ids"
)

// MemoryStore keeps keys in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]*storedKey
}

type storedKey struct {
	Key     Key                `json:"key"`
	Private ed25519.PrivateKey `json:"private"`
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory key store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]*storedKey)}
}

func (s *MemoryStore) Generate(_ context.Context, name string) (*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sk := range s.keys {
		if sk.Key.Name == name {
			return nil, fmt.Errorf("%w: %q", ErrKeyExists, name)
		}
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	sk := &storedKey{
		Key: Key{
			ID:        ids.NewKeyID(),
			Name:      name,
			Algorithm: AlgorithmEd25519,
			PublicKey: pub,
			CreatedAt: time.Now().UTC(),
		},
		Private: priv,
	}
	s.keys[sk.Key.ID] = sk

	out := sk.Key
	return &out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.keys[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, id)
	}
	out := sk.Key
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]*Key, 0, len(s.keys))
	for _, sk := range s.keys {
		out := sk.Key
		keys = append(keys, &out)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].ID < keys[j].ID
		}
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
	return keys, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[id]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, id)
	}
	delete(s.keys, id)
	return nil
}

func (s *MemoryStore) Sign(_ context.Context, id string, payload []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.keys[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, id)
	}
	return ed25519.Sign(sk.Private, payload), nil
}
