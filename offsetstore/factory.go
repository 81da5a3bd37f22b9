package offsetstore

import (
	"fmt"
	"strings"
)

// New creates a Store from a connection string. An empty string yields an
// in-memory store; "redis://" and "rediss://" URLs yield a Redis-backed one.
func New(connString string) (Store, error) {
	switch {
	case connString == "":
		return NewMemoryStore(), nil
	case strings.HasPrefix(connString, "redis://"), strings.HasPrefix(connString, "rediss://"):
		return NewRedisStore(connString)
	default:
		return nil, fmt.Errorf("cantonstream: unsupported offset store URL: %s", connString)
	}
}
