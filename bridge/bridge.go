// Package bridge republishes delivered ledger transactions onto a Watermill
// publisher so downstream services can consume them from ordinary message
// infrastructure (in-memory channels, NATS, Kafka) instead of holding their
// own ledger subscription.
package bridge

import (
	"context"
	sterrors "errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ids"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/jsoncodec"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/logging"
)

// Metadata keys set on every bridged message.
const (
	MetadataKeyOffset        = "ledger_offset"
	MetadataKeyTransactionID = "transaction_id"
	MetadataKeyCommandID     = "command_id"
	MetadataKeyWorkflowID    = "workflow_id"
)

// Source is the subscription surface the bridge pumps from. A
// *cantonstream.Subscription satisfies it.
type Source interface {
	Next(ctx context.Context) (*ledger.Transaction, error)
}

// Bridge pumps one subscription into one topic.
type Bridge struct {
	publisher message.Publisher
	topic     string
	logger    logging.ServiceLogger
}

// New builds the configured publisher backend and returns a bridge for it.
func New(conf *Config, logger logging.ServiceLogger) (*Bridge, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	pub, err := newPublisher(conf, logging.NewWatermillAdapter(logger))
	if err != nil {
		return nil, err
	}
	return NewWithPublisher(pub, conf.Topic, logger), nil
}

// NewWithPublisher wraps an existing Watermill publisher, e.g. a shared
// gochannel pub/sub the application also subscribes on.
func NewWithPublisher(pub message.Publisher, topic string, logger logging.ServiceLogger) *Bridge {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Bridge{publisher: pub, topic: topic, logger: logger}
}

// NewMessage converts a ledger transaction into a Watermill message: JSON
// payload, ULID UUID, and offset/identity metadata.
func NewMessage(tx *ledger.Transaction) (*message.Message, error) {
	payload, err := jsoncodec.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("cantonstream: encoding transaction %s: %w", tx.ID, err)
	}

	msg := message.NewMessage(ids.NewULID(), payload)
	msg.Metadata.Set(MetadataKeyOffset, tx.Offset.String())
	msg.Metadata.Set(MetadataKeyTransactionID, tx.ID)
	if tx.CommandID != "" {
		msg.Metadata.Set(MetadataKeyCommandID, tx.CommandID)
	}
	if tx.WorkflowID != "" {
		msg.Metadata.Set(MetadataKeyWorkflowID, tx.WorkflowID)
	}
	return msg, nil
}

// Run pumps the source until it closes, ctx is done, or a terminal error
// occurs. Buffer-overflow gaps are logged and skipped; the bridged topic
// then simply misses the evicted transactions, mirroring what the
// subscription itself observed.
func (b *Bridge) Run(ctx context.Context, src Source) error {
	for {
		tx, err := src.Next(ctx)
		if err != nil {
			switch {
			case sterrors.Is(err, errspkg.ErrSubscriptionClosed):
				return nil
			case sterrors.Is(err, errspkg.ErrBufferOverflow):
				b.logger.Error("gap in bridged stream", err, logging.LogFields{"topic": b.topic})
				continue
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				return err
			}
		}

		msg, err := NewMessage(tx)
		if err != nil {
			return err
		}
		msg.SetContext(ctx)
		if err := b.publisher.Publish(b.topic, msg); err != nil {
			return fmt.Errorf("cantonstream: publishing offset %s: %w", tx.Offset, err)
		}
		b.logger.Trace("transaction bridged", logging.LogFields{
			"topic":  b.topic,
			"offset": tx.Offset.String(),
		})
	}
}

// Close closes the underlying publisher.
func (b *Bridge) Close() error {
	return b.publisher.Close()
}
