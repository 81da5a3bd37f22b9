package stream

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/logging"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/transport"
)

// driverState is the connection phase of a subscription's background loop.
type driverState int

const (
	stateConnecting driverState = iota
	stateStreaming
	stateReconnecting
	stateClosed
)

func (s driverState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateStreaming:
		return "streaming"
	case stateReconnecting:
		return "reconnecting"
	default:
		return "closed"
	}
}

// driver owns the connection lifecycle for one subscription: it opens
// transport streams, rides out disconnects with exponential backoff, applies
// the filter engine, advances the offset tracker, and pushes matches into the
// buffer. It runs on its own goroutine and shares nothing with the consumer
// except the buffer.
type driver struct {
	id        string
	conf      Config
	transport transport.Transport
	filter    ledger.TransactionFilter
	engine    *filterEngine
	tracker   *offsetTracker
	buf       *buffer
	logger    logging.ServiceLogger
	metrics   *Metrics
	tracer    trace.Tracer
	store     OffsetStore

	state   driverState
	retries int
	// term is the fatal error carried into the Closed state, nil on cancel.
	term error
}

// run drives the Connecting → Streaming → Reconnecting → Closed state
// machine until the subscription context is cancelled or a fatal error
// occurs. Transient transport failures never escape this loop.
func (d *driver) run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.conf.PollInterval
	bo.MaxInterval = d.conf.MaxReconnectInterval

	var s transport.Stream
	for d.state != stateClosed {
		d.metrics.recordState(d.id, d.state)

		switch d.state {
		case stateConnecting:
			s = d.connect(ctx, bo)
		case stateStreaming:
			s = d.pump(ctx, s)
		case stateReconnecting:
			d.await(ctx, bo)
		}
	}
	d.metrics.recordState(d.id, stateClosed)

	if s != nil {
		_ = s.Close()
	}
	d.buf.Close(d.term)
	d.metrics.forget(d.id)
	d.logger.Info("subscription closed", logging.LogFields{"subscription": d.id})
}

// transition moves the state machine and logs the edge.
func (d *driver) transition(next driverState) {
	d.logger.Debug("driver state change", logging.LogFields{
		"subscription": d.id,
		"from":         d.state.String(),
		"to":           next.String(),
	})
	d.state = next
}

// fatal records the terminal error and closes the driver.
func (d *driver) fatal(err error) {
	d.logger.Error("subscription failed", err, logging.LogFields{"subscription": d.id})
	d.term = err
	d.transition(stateClosed)
}

func (d *driver) connect(ctx context.Context, bo *backoff.ExponentialBackOff) transport.Stream {
	from := d.tracker.Current()

	cctx, span := d.tracer.Start(ctx, "cantonstream.connect",
		trace.WithAttributes(
			attribute.String("subscription.id", d.id),
			attribute.String("ledger.offset", from.String()),
			attribute.Int("reconnect.attempt", d.retries),
		))
	s, err := d.transport.OpenStream(cctx, from, d.filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open stream")
		span.End()
		if ctx.Err() != nil {
			d.transition(stateClosed)
			return nil
		}
		if errspkg.IsFatal(err) {
			d.fatal(err)
			return nil
		}
		d.logger.Debug("stream open failed", logging.LogFields{
			"subscription": d.id,
			"offset":       from.String(),
			"error":        err.Error(),
		})
		d.transition(stateReconnecting)
		return nil
	}
	span.End()

	d.retries = 0
	bo.Reset()
	d.logger.Info("stream connected", logging.LogFields{
		"subscription": d.id,
		"offset":       from.String(),
	})
	d.transition(stateStreaming)
	return s
}

// pump reads the connected stream until it fails or the subscription ends.
// It returns the stream to keep (nil once it has been closed).
func (d *driver) pump(ctx context.Context, s transport.Stream) transport.Stream {
	for d.state == stateStreaming {
		tx, err := s.Recv()
		if err != nil {
			_ = s.Close()
			if ctx.Err() != nil {
				d.transition(stateClosed)
			} else if errspkg.IsFatal(err) {
				d.fatal(err)
			} else {
				d.logger.Debug("stream interrupted", logging.LogFields{
					"subscription": d.id,
					"error":        err.Error(),
				})
				d.transition(stateReconnecting)
			}
			return nil
		}
		if err := d.handle(ctx, tx); err != nil {
			_ = s.Close()
			return nil
		}
	}
	return s
}

// handle applies dedup, filtering, and offset tracking to one received
// transaction. A non-nil return means the driver has left Streaming.
func (d *driver) handle(ctx context.Context, tx *ledger.Transaction) error {
	// Reconnection replay: the transport may redeliver at or before the
	// resume point. Silently discard, never forward a duplicate downstream.
	if d.tracker.Behind(tx.Offset) {
		d.metrics.recordDuplicate(d.id)
		d.logger.Trace("duplicate discarded", logging.LogFields{
			"subscription": d.id,
			"offset":       tx.Offset.String(),
		})
		return nil
	}

	// Offsets track transport position, not delivered-event count: advance
	// for non-matching transactions too.
	if err := d.tracker.Advance(tx.Offset); err != nil {
		d.fatal(err)
		return err
	}

	if !d.engine.matches(tx) {
		d.metrics.recordFiltered(d.id)
		return nil
	}

	if err := d.buf.Push(ctx, tx); err != nil {
		// Cancelled mid-push or buffer already closed; not an error of the
		// stream itself.
		d.transition(stateClosed)
		return err
	}
	d.metrics.recordDelivered(d.id, d.buf.Len())
	d.commit(ctx, tx.Offset)
	return nil
}

// commit persists the delivered offset to the external store, when one is
// configured. Failures are logged and do not interrupt streaming; the worst
// case is redelivery after a restart, which at-least-once permits.
func (d *driver) commit(ctx context.Context, off ledger.Offset) {
	if d.store == nil || d.conf.SubscriptionName == "" {
		return
	}
	if err := d.store.Save(ctx, d.conf.SubscriptionName, off); err != nil {
		d.logger.Error("offset commit failed", err, logging.LogFields{
			"subscription": d.id,
			"name":         d.conf.SubscriptionName,
			"offset":       off.String(),
		})
	}
}

// await sleeps out the backoff interval before the next connection attempt.
func (d *driver) await(ctx context.Context, bo *backoff.ExponentialBackOff) {
	d.retries++
	d.metrics.recordReconnect(d.id)
	wait := bo.NextBackOff()
	d.logger.Info("reconnecting", logging.LogFields{
		"subscription": d.id,
		"attempt":      d.retries,
		"backoff":      wait.String(),
	})

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		d.transition(stateClosed)
	case <-timer.C:
		d.transition(stateConnecting)
	}
}
