// Package channel provides an in-memory ledger transport. It backs the
// examples and the engine's tests: transactions are committed to a shared
// in-process log with monotonically increasing offsets, and streams replay
// history from any offset before tailing live commits.
//
// The Ledger also supports failure injection (failing the next open, dropping
// live connections) so reconnection behaviour can be exercised without a real
// server.
package channel

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ids"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/logging"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "channel"

// Register registers the channel transport with the default registry.
func Register() {
	transport.Register(TransportName, Build)
}

// Build creates a fresh in-memory ledger. Each call returns an independent
// ledger; programs that need to commit to the same ledger they stream from
// should construct one with New and share it directly.
func Build(_ context.Context, _ transport.Config, _ logging.ServiceLogger) (transport.Transport, error) {
	return New(), nil
}

// Ledger is an appendable in-memory transaction log serving filtered streams.
type Ledger struct {
	mu      sync.Mutex
	txs     []ledger.Transaction
	next    uint64
	notify  chan struct{}
	openErr error
	streams map[*stream]struct{}
}

var _ transport.Transport = (*Ledger)(nil)

// New creates an empty in-memory ledger. Offsets start at 1.
func New() *Ledger {
	return &Ledger{
		next:    1,
		notify:  make(chan struct{}),
		streams: make(map[*stream]struct{}),
	}
}

// Commit appends a transaction carrying the given events and returns its
// assigned offset.
func (l *Ledger) Commit(events ...ledger.Event) ledger.Offset {
	return l.CommitTx(ledger.Transaction{Events: events})
}

// CommitTx appends tx, assigning its offset and, when absent, its ID and
// effective-at timestamp.
func (l *Ledger) CommitTx(tx ledger.Transaction) ledger.Offset {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx.Offset = ledger.OffsetAt(l.next)
	l.next++
	if tx.ID == "" {
		tx.ID = ids.NewULID()
	}
	if tx.EffectiveAt.IsZero() {
		tx.EffectiveAt = time.Now().UTC()
	}
	l.txs = append(l.txs, tx)

	close(l.notify)
	l.notify = make(chan struct{})
	return tx.Offset
}

// End returns the offset of the last committed transaction, or Begin when the
// ledger is empty.
func (l *Ledger) End() ledger.Offset {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.next == 1 {
		return ledger.OffsetBegin()
	}
	return ledger.OffsetAt(l.next - 1)
}

// FailNextOpen makes the next OpenStream call fail with err.
func (l *Ledger) FailNextOpen(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.openErr = err
}

// DropConnections fails every live stream with err, as a server restart
// would. Subsequent OpenStream calls succeed.
func (l *Ledger) DropConnections(err error) {
	if err == nil {
		err = io.EOF
	}
	l.mu.Lock()
	streams := make([]*stream, 0, len(l.streams))
	for s := range l.streams {
		streams = append(streams, s)
	}
	l.streams = make(map[*stream]struct{})
	l.mu.Unlock()

	for _, s := range streams {
		s.fail(err)
	}
}

// OpenStream implements transport.Transport.
func (l *Ledger) OpenStream(ctx context.Context, from ledger.Offset, filter ledger.TransactionFilter) (transport.Stream, error) {
	if len(filter) == 0 {
		return nil, errors.New("channel: transaction filter is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.openErr != nil {
		err := l.openErr
		l.openErr = nil
		return nil, err
	}

	cursor := uint64(0)
	switch {
	case from.IsEnd():
		cursor = l.next - 1
	case from.IsAbsolute():
		cursor, _ = from.Index()
	}

	s := &stream{
		ledger: l,
		filter: filter,
		cursor: cursor,
		ctx:    ctx,
		killed: make(chan struct{}),
	}
	l.streams[s] = struct{}{}
	return s, nil
}

type stream struct {
	ledger *Ledger
	filter ledger.TransactionFilter
	cursor uint64
	ctx    context.Context

	failMu  sync.Mutex
	failErr error
	killed  chan struct{}
}

func (s *stream) fail(err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failErr == nil {
		s.failErr = err
		close(s.killed)
	}
}

func (s *stream) failed() error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failErr
}

// Recv returns the next transaction visible to the stream's filter, blocking
// on the ledger tail when none is pending. Transactions with no matching
// event are skipped server-side; their offsets are simply absent from the
// delivered sequence.
func (s *stream) Recv() (*ledger.Transaction, error) {
	for {
		if err := s.failed(); err != nil {
			return nil, err
		}

		s.ledger.mu.Lock()
		var match *ledger.Transaction
		for i := range s.ledger.txs {
			tx := s.ledger.txs[i]
			index, _ := tx.Offset.Index()
			if index <= s.cursor {
				continue
			}
			s.cursor = index
			if visible(tx, s.filter) {
				match = redact(tx, s.filter)
				break
			}
		}
		notify := s.ledger.notify
		s.ledger.mu.Unlock()

		if match != nil {
			return match, nil
		}

		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case <-s.killed:
		case <-notify:
		}
	}
}

func (s *stream) Close() error {
	s.ledger.mu.Lock()
	delete(s.ledger.streams, s)
	s.ledger.mu.Unlock()
	s.fail(io.EOF)
	return nil
}

func visible(tx ledger.Transaction, filter ledger.TransactionFilter) bool {
	for _, ev := range tx.Events {
		for _, w := range ev.Witnesses {
			if pf, ok := filter[w]; ok && pf.Admits(ev) {
				return true
			}
		}
	}
	return false
}

// redact returns a copy of tx with created-event blobs stripped unless some
// matching party filter asked for them.
func redact(tx ledger.Transaction, filter ledger.TransactionFilter) *ledger.Transaction {
	out := tx
	out.Events = make([]ledger.Event, len(tx.Events))
	copy(out.Events, tx.Events)
	for i := range out.Events {
		if !blobRequested(out.Events[i], filter) {
			out.Events[i].CreatedEventBlob = nil
		}
	}
	return &out
}

func blobRequested(ev ledger.Event, filter ledger.TransactionFilter) bool {
	for _, w := range ev.Witnesses {
		if pf, ok := filter[w]; ok && pf.IncludeCreatedEventBlob && pf.Admits(ev) {
			return true
		}
	}
	return false
}
