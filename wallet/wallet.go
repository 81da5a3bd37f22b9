// Package wallet constructs party identities on top of the key store. A
// party identifier is the human-readable hint joined to the fingerprint of
// its namespace signing key, e.g. "alice::1220ab…". The wallet signs with
// the key it was allocated with and knows how to filter the transaction
// stream down to its own party.
package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/keystore"
)

// fingerprintPrefix is the multihash marker for sha2-256 (0x12) with a
// 32-byte digest (0x20), matching how ledger nodes render key fingerprints.
const fingerprintPrefix = "1220"

var ErrInvalidHint = errors.New("cantonstream: invalid party hint")

// Wallet binds a party identity to its signing key.
type Wallet struct {
	party ledger.Party
	keyID string
	store keystore.Store
}

// Allocate generates a fresh signing key named after hint and derives the
// party identifier from its fingerprint. The hint must be non-empty and must
// not contain the "::" separator.
func Allocate(ctx context.Context, store keystore.Store, hint string) (*Wallet, error) {
	if hint == "" || strings.Contains(hint, "::") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHint, hint)
	}

	key, err := store.Generate(ctx, hint)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		party: PartyID(hint, key.PublicKey),
		keyID: key.ID,
		store: store,
	}, nil
}

// Open rebuilds a wallet from an existing key, e.g. after a restart with a
// file-backed store.
func Open(ctx context.Context, store keystore.Store, keyID string) (*Wallet, error) {
	key, err := store.Get(ctx, keyID)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		party: PartyID(key.Name, key.PublicKey),
		keyID: key.ID,
		store: store,
	}, nil
}

// PartyID derives the party identifier for a hint and namespace public key.
func PartyID(hint string, publicKey []byte) ledger.Party {
	digest := sha256.Sum256(publicKey)
	return ledger.Party(hint + "::" + fingerprintPrefix + hex.EncodeToString(digest[:]))
}

// Party returns the wallet's party identifier.
func (w *Wallet) Party() ledger.Party { return w.party }

// KeyID returns the ID of the wallet's signing key in its key store.
func (w *Wallet) KeyID() string { return w.keyID }

// Sign signs payload with the wallet's key.
func (w *Wallet) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	return w.store.Sign(ctx, w.keyID, payload)
}

// Filter returns an unrestricted transaction filter scoped to the wallet's
// own party.
func (w *Wallet) Filter() ledger.TransactionFilter {
	return ledger.NewTransactionFilter(w.party)
}
