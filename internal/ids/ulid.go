// Package ids generates the time-sortable identifiers used for subscriptions,
// keys, and bridge messages.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a time-sortable ULID encoded as a 26-character string.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// NewSubscriptionID returns an identifier for a stream subscription.
func NewSubscriptionID() string { return "sub-" + NewULID() }

// NewKeyID returns an identifier for a stored signing key.
func NewKeyID() string { return "key-" + NewULID() }
