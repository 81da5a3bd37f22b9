// Package stream implements the resumable, filtered event-streaming engine:
// offset tracking, automatic reconnection with exponential backoff, bounded
// buffering with an explicit overflow policy, and filter-scoped
// subscriptions. One background goroutine per subscription drives the
// transport; consumer and driver communicate only through the bounded
// buffer.
package stream

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ids"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/logging"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/transport"
)

// OffsetStore persists delivered offsets outside process memory so a
// subscription can resume across restarts. Implementations must tolerate
// concurrent use by independent subscriptions.
type OffsetStore interface {
	// Load returns the stored offset for the named subscription and whether
	// one exists.
	Load(ctx context.Context, name string) (ledger.Offset, bool, error)
	// Save records the offset for the named subscription.
	Save(ctx context.Context, name string, off ledger.Offset) error
}

// Dependencies holds the collaborators an EventStream needs. Transport is
// required; the rest default sensibly when nil.
type Dependencies struct {
	Transport  transport.Transport
	Logger     logging.ServiceLogger
	Registerer prometheus.Registerer
	// OffsetStore, combined with Config.SubscriptionName, enables offset
	// resumption across process restarts.
	OffsetStore OffsetStore
}

// EventStream creates filter-scoped subscriptions over a ledger transport.
// The configuration is snapshotted per subscription; the stream itself holds
// no per-subscription state.
type EventStream struct {
	conf    Config
	deps    Dependencies
	metrics *Metrics
	tracer  trace.Tracer
}

// New validates the configuration and builds an EventStream.
func New(conf *Config, deps Dependencies) (*EventStream, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if deps.Transport == nil {
		return nil, errspkg.ErrTransportRequired
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}

	metrics := NewMetrics(deps.Registerer)
	if err := metrics.Register(); err != nil {
		return nil, err
	}

	return &EventStream{
		conf:    conf.withDefaults(),
		deps:    deps,
		metrics: metrics,
		tracer:  otel.Tracer("cantonstream"),
	}, nil
}

// Subscribe opens a filtered subscription. The returned Subscription owns a
// background driver goroutine whose lifetime is bounded by ctx and by
// Cancel; cancelling tears the driver down cooperatively after its in-flight
// read.
func (e *EventStream) Subscribe(ctx context.Context, filter ledger.TransactionFilter) (*Subscription, error) {
	if len(filter) == 0 {
		return nil, errspkg.ErrFilterRequired
	}

	engine, err := newFilterEngine(filter, e.conf.Expression)
	if err != nil {
		return nil, err
	}

	initial, err := e.initialOffset(ctx)
	if err != nil {
		return nil, err
	}

	id := ids.NewSubscriptionID()
	buf := newBuffer(e.conf.BufferSize, e.conf.Overflow)
	buf.onEvict = func() { e.metrics.recordDropped(id) }

	dctx, cancel := context.WithCancel(ctx)
	d := &driver{
		id:        id,
		conf:      e.conf,
		transport: e.deps.Transport,
		filter:    filter,
		engine:    engine,
		tracker:   newOffsetTracker(initial),
		buf:       buf,
		logger:    e.deps.Logger,
		metrics:   e.metrics,
		tracer:    e.tracer,
		store:     e.deps.OffsetStore,
		state:     stateConnecting,
	}

	e.deps.Logger.Info("subscription opened", logging.LogFields{
		"subscription": id,
		"parties":      len(filter),
		"offset":       initial.String(),
		"overflow":     e.conf.Overflow.String(),
	})

	go d.run(dctx)

	return &Subscription{id: id, buf: buf, cancel: cancel}, nil
}

// initialOffset resolves where the first connection starts: the externally
// stored offset when resumption is configured and present, the configured
// initial offset otherwise.
func (e *EventStream) initialOffset(ctx context.Context) (ledger.Offset, error) {
	if e.deps.OffsetStore == nil || e.conf.SubscriptionName == "" {
		return e.conf.InitialOffset, nil
	}
	off, ok, err := e.deps.OffsetStore.Load(ctx, e.conf.SubscriptionName)
	if err != nil {
		return ledger.Offset{}, err
	}
	if !ok {
		return e.conf.InitialOffset, nil
	}
	return off, nil
}
