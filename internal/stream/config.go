package stream

import (
	sterrors "errors"
	"fmt"
	"time"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// OverflowPolicy selects what the buffer does when a slow consumer lets it
// fill up.
type OverflowPolicy int

const (
	// OverflowBlock suspends the transport read loop until the consumer
	// frees space. Backpressure, never loses events. The default.
	OverflowBlock OverflowPolicy = iota

	// OverflowDropOldest evicts the oldest buffered events to admit new
	// ones, surfacing a BufferOverflowError item in the stream so the
	// consumer knows a gap occurred.
	OverflowDropOldest
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowBlock:
		return "block"
	case OverflowDropOldest:
		return "drop_oldest"
	default:
		return fmt.Sprintf("overflow(%d)", int(p))
	}
}

const (
	defaultBufferSize           = 128
	defaultPollInterval         = time.Second
	defaultMaxReconnectInterval = time.Minute
)

// Config is the immutable configuration snapshot taken at subscribe time.
// Changing a value after Subscribe has no effect; build a new subscription
// instead.
type Config struct {
	// BufferSize caps the number of undelivered transactions held per
	// subscription. Defaults to 128.
	BufferSize int

	// PollInterval seeds the reconnect backoff. Defaults to 1s.
	PollInterval time.Duration

	// MaxReconnectInterval caps the exponential backoff between reconnect
	// attempts. Defaults to 1m.
	MaxReconnectInterval time.Duration

	// Overflow selects the buffer overflow policy. Defaults to OverflowBlock.
	Overflow OverflowPolicy

	// InitialOffset positions the first connection. Defaults to the ledger
	// end, i.e. only new transactions.
	InitialOffset ledger.Offset

	// SubscriptionName keys the external offset store, when one is
	// configured. Subscriptions resuming under the same name continue from
	// the last committed offset.
	SubscriptionName string

	// Expression is an optional CEL predicate evaluated locally against each
	// candidate transaction, after the party/template filter. Empty disables
	// it.
	Expression string
}

// Validate checks the configuration for values no defaulting can repair.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateBuffer()...)
	errs = append(errs, c.validateIntervals()...)

	return errspkg.NewConfigValidationError(sterrors.Join(errs...))
}

func (c *Config) validateBuffer() []error {
	var errs []error
	if c.BufferSize < 0 {
		errs = append(errs, sterrors.New("buffer: size cannot be negative"))
	}
	switch c.Overflow {
	case OverflowBlock, OverflowDropOldest:
	default:
		errs = append(errs, fmt.Errorf("buffer: unknown overflow policy %d", int(c.Overflow)))
	}
	return errs
}

func (c *Config) validateIntervals() []error {
	var errs []error
	if c.PollInterval < 0 {
		errs = append(errs, sterrors.New("reconnect: poll interval cannot be negative"))
	}
	if c.MaxReconnectInterval < 0 {
		errs = append(errs, sterrors.New("reconnect: max interval cannot be negative"))
	}
	if c.MaxReconnectInterval > 0 && c.PollInterval > 0 && c.PollInterval > c.MaxReconnectInterval {
		errs = append(errs, sterrors.New("reconnect: poll interval cannot exceed max interval"))
	}
	return errs
}

// withDefaults returns a copy with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxReconnectInterval == 0 {
		c.MaxReconnectInterval = defaultMaxReconnectInterval
	}
	if c.InitialOffset.IsZero() {
		c.InitialOffset = ledger.OffsetEnd()
	}
	return c
}
