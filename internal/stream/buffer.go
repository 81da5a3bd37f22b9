package stream

import (
	"context"
	"sync"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// item is a single buffered delivery: either a transaction or an inline
// error. Exactly one field is set.
type item struct {
	tx  *ledger.Transaction
	err error
}

// errBufferClosed is returned by Push once the buffer has been closed. It
// never escapes the engine.
var errBufferClosed = errspkg.ErrSubscriptionClosed

// buffer is the bounded single-producer/single-consumer queue between a
// driver and its subscription. It is the only state shared between the two
// goroutines.
//
// Under OverflowBlock a full buffer suspends the producer, which pauses
// transport reads and so backpressures the server. Under OverflowDropOldest
// the oldest transactions are evicted; the consumer is handed one
// BufferOverflowError per eviction batch (consecutive evictions between two
// pops) before the surviving items.
type buffer struct {
	mu       sync.Mutex
	items    []item
	capacity int
	policy   OverflowPolicy

	// dropped counts evictions since the consumer last observed the gap.
	dropped int

	// onEvict, when set, observes each eviction under OverflowDropOldest.
	onEvict func()

	// term is the terminal error, delivered once after the queue drains.
	term     error
	termSent bool
	closed   bool
	closedCh chan struct{}
	notEmpty chan struct{}
	notFull  chan struct{}
}

func newBuffer(capacity int, policy OverflowPolicy) *buffer {
	return &buffer{
		capacity: capacity,
		policy:   policy,
		closedCh: make(chan struct{}),
		notEmpty: make(chan struct{}, 1),
		notFull:  make(chan struct{}, 1),
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Push enqueues a transaction, applying the overflow policy when the buffer
// is full. It returns when the item is admitted, the context is cancelled, or
// the buffer is closed.
func (b *buffer) Push(ctx context.Context, tx *ledger.Transaction) error {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return errBufferClosed
		}
		if len(b.items) < b.capacity {
			b.items = append(b.items, item{tx: tx})
			b.mu.Unlock()
			signal(b.notEmpty)
			return nil
		}
		if b.policy == OverflowDropOldest {
			b.items = append(b.items[1:], item{tx: tx})
			b.dropped++
			evict := b.onEvict
			b.mu.Unlock()
			if evict != nil {
				evict()
			}
			signal(b.notEmpty)
			return nil
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closedCh:
		case <-b.notFull:
		}
	}
}

// Pop dequeues the next item. A pending overflow gap is reported before the
// items that follow it. After Close, Pop drains whatever is buffered, then
// hands out the terminal error once (when there is one), then reports
// errBufferClosed.
func (b *buffer) Pop(ctx context.Context) (item, error) {
	for {
		b.mu.Lock()
		if b.dropped > 0 {
			it := item{err: &errspkg.BufferOverflowError{Dropped: b.dropped, Capacity: b.capacity}}
			b.dropped = 0
			b.mu.Unlock()
			return it, nil
		}
		if len(b.items) > 0 {
			it := b.items[0]
			b.items[0] = item{}
			b.items = b.items[1:]
			b.mu.Unlock()
			signal(b.notFull)
			return it, nil
		}
		if b.closed {
			if b.term != nil && !b.termSent {
				b.termSent = true
				err := b.term
				b.mu.Unlock()
				return item{err: err}, nil
			}
			b.mu.Unlock()
			return item{}, errBufferClosed
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return item{}, ctx.Err()
		case <-b.closedCh:
		case <-b.notEmpty:
		}
	}
}

// Close stops further pushes. Buffered items stay poppable; term, when
// non-nil, becomes the subscription's final item. The first call wins.
func (b *buffer) Close(term error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.term = term
	b.mu.Unlock()
	close(b.closedCh)
}

// Len reports current occupancy.
func (b *buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
