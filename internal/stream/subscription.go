package stream

import (
	"context"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// Subscription is the consumer-facing handle over one filtered, offset-
// tracked view of the transaction stream. It yields transactions in strictly
// increasing offset order until cancelled or terminally failed.
type Subscription struct {
	id     string
	buf    *buffer
	cancel context.CancelFunc
}

// ID returns the subscription's unique identifier, used in logs and metric
// labels.
func (s *Subscription) ID() string { return s.id }

// Next blocks until a transaction is available, an inline or terminal error
// is due, or ctx is done.
//
// A nil transaction with a non-nil error is an inline item: a
// BufferOverflowError signals a delivery gap under the drop-oldest policy
// without ending the stream; any other error is terminal and is returned
// exactly once. Once the subscription is closed and drained, Next returns
// ErrSubscriptionClosed forever.
func (s *Subscription) Next(ctx context.Context) (*ledger.Transaction, error) {
	it, err := s.buf.Pop(ctx)
	if err != nil {
		return nil, err
	}
	if it.err != nil {
		return nil, it.err
	}
	return it.tx, nil
}

// Cancel asks the driver to shut down at its next safe point. It does not
// discard buffered, undelivered transactions: Next keeps yielding them until
// the buffer drains, then reports ErrSubscriptionClosed. Safe to call more
// than once.
func (s *Subscription) Cancel() {
	s.cancel()
}
