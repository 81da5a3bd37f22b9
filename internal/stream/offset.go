package stream

import (
	"fmt"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

// offsetTracker holds the last acknowledged transport position for one
// subscription. It is owned and mutated only by that subscription's driver;
// no locking of its own.
type offsetTracker struct {
	current ledger.Offset
}

func newOffsetTracker(initial ledger.Offset) *offsetTracker {
	return &offsetTracker{current: initial}
}

// Current returns the last acknowledged offset. A dropped connection resumes
// strictly after it.
func (t *offsetTracker) Current() ledger.Offset {
	return t.current
}

// Advance moves the tracker to next, which must be an absolute offset
// strictly greater than the current position. Anything else is a logic
// violation from the transport and is reported as ErrInvalidOffset.
func (t *offsetTracker) Advance(next ledger.Offset) error {
	if !next.IsAbsolute() {
		return fmt.Errorf("%w: transaction offset %q is not absolute", errspkg.ErrInvalidOffset, next)
	}
	if t.current.IsAbsolute() && next.Compare(t.current) <= 0 {
		return fmt.Errorf("%w: %q after %q", errspkg.ErrInvalidOffset, next, t.current)
	}
	t.current = next
	return nil
}

// Behind reports whether off is at or before the tracked position, i.e. a
// reconnection-replay duplicate the driver must discard. Until the first
// transaction is tracked the position is a symbolic Begin/End and nothing
// received can be behind it.
func (t *offsetTracker) Behind(off ledger.Offset) bool {
	return t.current.IsAbsolute() && off.Compare(t.current) <= 0
}
