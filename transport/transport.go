// Package transport defines the boundary to the remote ledger's transaction
// feed. The streaming engine consumes this interface and owns all
// reconnection; implementations only have to produce a one-way stream of
// transactions tagged with strictly increasing offsets.
//
// The ledger wire protocol itself is out of scope for this module. The
// channel sub-package provides an in-memory ledger for tests and examples;
// applications bring their own implementation (typically a thin wrapper over
// their ledger's RPC client) and register it with the registry.
package transport

import (
	"context"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/logging"
)

// Stream is a one-way sequence of committed transactions. Recv blocks until a
// transaction is available or the stream fails; it returns io.EOF when the
// server closes the stream cleanly.
type Stream interface {
	Recv() (*ledger.Transaction, error)
	Close() error
}

// Transport opens filtered transaction streams against a ledger.
type Transport interface {
	// OpenStream starts a stream of transactions positioned strictly after
	// the given offset. The Begin form replays all visible history; End
	// delivers only transactions committed after the call. The filter is
	// forwarded so most exclusion happens server-side.
	OpenStream(ctx context.Context, from ledger.Offset, filter ledger.TransactionFilter) (Stream, error)
}

// Builder is the function signature for creating a transport from config.
// Each transport package should provide a Builder function that can be
// registered.
type Builder func(ctx context.Context, cfg Config, logger logging.ServiceLogger) (Transport, error)

// Config provides the values transports need without tying them to any
// particular configuration source.
type Config interface {
	// GetLedgerSystem returns the transport type name, e.g. "channel".
	GetLedgerSystem() string

	// GetLedgerURL returns the endpoint address for remote transports.
	GetLedgerURL() string
}
