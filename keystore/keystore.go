// Package keystore manages the signing keys a wallet identity is built on:
// generation, lookup, deletion, and signing by key ID. Two implementations
// are provided, an in-memory store for tests and short-lived tools and a
// JSON-file store for local wallets. Private key material never leaves the
// store; callers sign through it.
package keystore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotFound = errors.New("cantonstream: key not found")
	ErrKeyExists   = errors.New("cantonstream: key name already in use")
)

// Algorithm names a supported signature scheme.
type Algorithm string

// AlgorithmEd25519 is the only scheme currently generated.
const AlgorithmEd25519 Algorithm = "ed25519"

// Key is the public half of a stored signing key.
type Key struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Algorithm Algorithm `json:"algorithm"`
	PublicKey []byte    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the key-management contract consumed by the wallet layer.
type Store interface {
	// Generate creates and stores a new Ed25519 key under the given name.
	// Names are unique within a store.
	Generate(ctx context.Context, name string) (*Key, error)

	// Get returns the key with the given ID.
	Get(ctx context.Context, id string) (*Key, error)

	// List returns all stored keys, ordered by creation time.
	List(ctx context.Context) ([]*Key, error)

	// Delete removes the key with the given ID.
	Delete(ctx context.Context, id string) error

	// Sign signs payload with the private key behind the given ID.
	Sign(ctx context.Context, id string, payload []byte) ([]byte, error)
}
