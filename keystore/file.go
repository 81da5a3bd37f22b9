package keystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/jsoncodec"
)

// FileStore persists keys to a single JSON file. Writes go through a
// temporary file and an atomic rename so a crash never leaves the store
// half-written. Safe for concurrent use within one process; it does not
// coordinate between processes.
type FileStore struct {
	mu   sync.Mutex
	path string
	mem  *MemoryStore
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (or creates) the key store at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, mem: NewMemoryStore()}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading key store: %w", err)
	}

	var stored []*storedKey
	if err := jsoncodec.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parsing key store %s: %w", s.path, err)
	}
	for _, sk := range stored {
		s.mem.keys[sk.Key.ID] = sk
	}
	return nil
}

func (s *FileStore) flush() error {
	s.mem.mu.RLock()
	stored := make([]*storedKey, 0, len(s.mem.keys))
	for _, sk := range s.mem.keys {
		stored = append(stored, sk)
	}
	s.mem.mu.RUnlock()

	data, err := jsoncodec.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding key store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating key store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".keystore-*")
	if err != nil {
		return fmt.Errorf("writing key store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing key store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing key store: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("writing key store: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) Generate(ctx context.Context, name string) (*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.mem.Generate(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.flush(); err != nil {
		_ = s.mem.Delete(ctx, key.ID)
		return nil, err
	}
	return key, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Key, error) {
	return s.mem.Get(ctx, id)
}

func (s *FileStore) List(ctx context.Context) ([]*Key, error) {
	return s.mem.List(ctx)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Delete(ctx, id); err != nil {
		return err
	}
	return s.flush()
}

func (s *FileStore) Sign(ctx context.Context, id string, payload []byte) ([]byte, error) {
	return s.mem.Sign(ctx, id, payload)
}
