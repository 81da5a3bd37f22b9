// Package errors defines the sentinel errors and the transient/fatal
// classification used across cantonstream.
package errors

import (
	sterrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrConfigRequired    = sterrors.New("cantonstream: configuration is required")
	ErrTransportRequired = sterrors.New("cantonstream: ledger transport is required")
	ErrLoggerRequired    = sterrors.New("cantonstream: logger is required")
	ErrFilterRequired    = sterrors.New("cantonstream: transaction filter is required")

	// ErrInvalidOffset is raised when an offset is not strictly greater than
	// the last tracked one, or when a caller resumes from an offset the
	// ledger no longer retains. It is fatal to the subscription.
	ErrInvalidOffset = sterrors.New("cantonstream: offset is not strictly increasing")

	// ErrInvalidFilter is raised when a filter (including a CEL expression)
	// cannot be compiled. Fatal at subscribe time.
	ErrInvalidFilter = sterrors.New("cantonstream: invalid transaction filter")

	// ErrSubscriptionClosed is returned by Next once a subscription is fully
	// closed and its buffer drained.
	ErrSubscriptionClosed = sterrors.New("cantonstream: subscription closed")

	// ErrBufferOverflow is the sentinel matched by BufferOverflowError via
	// errors.Is.
	ErrBufferOverflow = sterrors.New("cantonstream: buffer overflow")
)

// BufferOverflowError is surfaced inline, in place of evicted events, when the
// DropOldest overflow policy discards buffered data. It does not terminate the
// subscription.
type BufferOverflowError struct {
	// Dropped is the number of events evicted since the last delivered item.
	Dropped int
	// Capacity is the configured buffer capacity.
	Capacity int
}

func (e *BufferOverflowError) Error() string {
	return fmt.Sprintf("cantonstream: buffer overflow: dropped %d events (capacity %d)", e.Dropped, e.Capacity)
}

// Is lets errors.Is(err, ErrBufferOverflow) match.
func (e *BufferOverflowError) Is(target error) bool {
	return target == ErrBufferOverflow
}

// ConfigValidationError wraps the reasons a configuration failed validation.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return "cantonstream: invalid configuration: " + e.Err.Error()
}

func (e ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError wraps err, returning nil when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}

// IsFatal reports whether a streaming error must terminate the subscription
// instead of being retried. Local logic violations are fatal, as are the
// transport conditions that reconnecting cannot fix: failed authentication,
// denied authorization, and resuming behind the ledger's pruning horizon
// (OUT_OF_RANGE).
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if sterrors.Is(err, ErrInvalidOffset) || sterrors.Is(err, ErrInvalidFilter) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unauthenticated, codes.PermissionDenied, codes.OutOfRange, codes.InvalidArgument:
			return true
		}
	}
	return false
}

// IsRetryable reports whether a transport error should be absorbed by the
// reconnect loop. Every non-fatal error is retryable: a wallet client must
// ride out arbitrarily long server maintenance windows.
func IsRetryable(err error) bool {
	return err != nil && !IsFatal(err)
}
