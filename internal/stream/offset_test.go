package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

func TestOffsetTrackerAdvance(t *testing.T) {
	tracker := newOffsetTracker(ledger.OffsetBegin())

	require.NoError(t, tracker.Advance(ledger.OffsetAt(1)))
	require.NoError(t, tracker.Advance(ledger.OffsetAt(2)))
	require.NoError(t, tracker.Advance(ledger.OffsetAt(10)))
	assert.Equal(t, ledger.OffsetAt(10), tracker.Current())
}

func TestOffsetTrackerRejectsNonIncreasing(t *testing.T) {
	tracker := newOffsetTracker(ledger.OffsetBegin())
	require.NoError(t, tracker.Advance(ledger.OffsetAt(5)))

	err := tracker.Advance(ledger.OffsetAt(5))
	require.ErrorIs(t, err, errspkg.ErrInvalidOffset)

	err = tracker.Advance(ledger.OffsetAt(3))
	require.ErrorIs(t, err, errspkg.ErrInvalidOffset)

	// A failed advance leaves the tracker untouched.
	assert.Equal(t, ledger.OffsetAt(5), tracker.Current())
}

func TestOffsetTrackerRejectsSymbolicOffsets(t *testing.T) {
	tracker := newOffsetTracker(ledger.OffsetBegin())

	require.ErrorIs(t, tracker.Advance(ledger.OffsetBegin()), errspkg.ErrInvalidOffset)
	require.ErrorIs(t, tracker.Advance(ledger.OffsetEnd()), errspkg.ErrInvalidOffset)
	require.ErrorIs(t, tracker.Advance(ledger.Offset{}), errspkg.ErrInvalidOffset)
}

func TestOffsetTrackerBehind(t *testing.T) {
	// Before any transaction is tracked nothing counts as replay, whether
	// the subscription started from begin or end.
	for _, initial := range []ledger.Offset{ledger.OffsetBegin(), ledger.OffsetEnd()} {
		tracker := newOffsetTracker(initial)
		assert.False(t, tracker.Behind(ledger.OffsetAt(0)), "initial %s", initial)
		assert.False(t, tracker.Behind(ledger.OffsetAt(100)), "initial %s", initial)
	}

	tracker := newOffsetTracker(ledger.OffsetBegin())
	require.NoError(t, tracker.Advance(ledger.OffsetAt(7)))

	assert.True(t, tracker.Behind(ledger.OffsetAt(7)), "equal offset is replay")
	assert.True(t, tracker.Behind(ledger.OffsetAt(3)), "earlier offset is replay")
	assert.False(t, tracker.Behind(ledger.OffsetAt(8)))
}
