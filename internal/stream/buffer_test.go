package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/errors"
	"github.com/TheMacroeconomicDao/cantonnet-omnichain-sdk-sub001/internal/ledger"
)

func TestBufferFIFO(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(4, OverflowBlock)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, buf.Push(ctx, testTx(i, "alice")))
	}
	assert.Equal(t, 3, buf.Len())

	for i := uint64(1); i <= 3; i++ {
		it, err := buf.Pop(ctx)
		require.NoError(t, err)
		require.NoError(t, it.err)
		assert.Equal(t, ledger.OffsetAt(i), it.tx.Offset)
	}
	assert.Equal(t, 0, buf.Len())
}

func TestBufferBlockSuspendsProducer(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(2, OverflowBlock)

	require.NoError(t, buf.Push(ctx, testTx(1, "alice")))
	require.NoError(t, buf.Push(ctx, testTx(2, "alice")))

	pushed := make(chan error, 1)
	go func() {
		pushed <- buf.Push(ctx, testTx(3, "alice"))
	}()

	select {
	case err := <-pushed:
		t.Fatalf("push should have blocked on a full buffer, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	// Freeing a slot unblocks the producer.
	it, err := buf.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.OffsetAt(1), it.tx.Offset)

	select {
	case err := <-pushed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("push did not resume after a pop")
	}

	// Nothing was lost or reordered.
	for i := uint64(2); i <= 3; i++ {
		it, err := buf.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, ledger.OffsetAt(i), it.tx.Offset)
	}
}

func TestBufferBlockedPushHonorsContext(t *testing.T) {
	buf := newBuffer(1, OverflowBlock)
	require.NoError(t, buf.Push(context.Background(), testTx(1, "alice")))

	ctx, cancel := context.WithCancel(context.Background())
	pushed := make(chan error, 1)
	go func() {
		pushed <- buf.Push(ctx, testTx(2, "alice"))
	}()

	cancel()
	select {
	case err := <-pushed:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("push did not observe cancellation")
	}
}

func TestBufferDropOldest(t *testing.T) {
	ctx := context.Background()
	evictions := 0
	buf := newBuffer(2, OverflowDropOldest)
	buf.onEvict = func() { evictions++ }

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, buf.Push(ctx, testTx(i, "alice")))
	}
	assert.Equal(t, 2, buf.Len(), "occupancy never exceeds capacity")
	assert.Equal(t, 3, evictions)

	// The gap is reported once, before the surviving items.
	it, err := buf.Pop(ctx)
	require.NoError(t, err)
	var boErr *errspkg.BufferOverflowError
	require.ErrorAs(t, it.err, &boErr)
	assert.Equal(t, 3, boErr.Dropped)
	assert.Equal(t, 2, boErr.Capacity)

	for i := uint64(4); i <= 5; i++ {
		it, err := buf.Pop(ctx)
		require.NoError(t, err)
		require.NoError(t, it.err)
		assert.Equal(t, ledger.OffsetAt(i), it.tx.Offset)
	}
}

func TestBufferDropOldestReportsPerBatch(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(1, OverflowDropOldest)

	require.NoError(t, buf.Push(ctx, testTx(1, "alice")))
	require.NoError(t, buf.Push(ctx, testTx(2, "alice")))

	it, err := buf.Pop(ctx)
	require.NoError(t, err)
	var boErr *errspkg.BufferOverflowError
	require.ErrorAs(t, it.err, &boErr)
	assert.Equal(t, 1, boErr.Dropped)

	it, err = buf.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.OffsetAt(2), it.tx.Offset)

	// A second eviction batch gets its own report.
	require.NoError(t, buf.Push(ctx, testTx(3, "alice")))
	require.NoError(t, buf.Push(ctx, testTx(4, "alice")))

	it, err = buf.Pop(ctx)
	require.NoError(t, err)
	require.ErrorAs(t, it.err, &boErr)
	assert.Equal(t, 1, boErr.Dropped)
}

func TestBufferCloseDrainsBeforeTerminal(t *testing.T) {
	ctx := context.Background()
	buf := newBuffer(4, OverflowBlock)

	require.NoError(t, buf.Push(ctx, testTx(1, "alice")))
	require.NoError(t, buf.Push(ctx, testTx(2, "alice")))

	term := errors.New("ledger rejected the stream")
	buf.Close(term)

	require.ErrorIs(t, buf.Push(ctx, testTx(3, "alice")), errspkg.ErrSubscriptionClosed)

	// Buffered items first.
	for i := uint64(1); i <= 2; i++ {
		it, err := buf.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, ledger.OffsetAt(i), it.tx.Offset)
	}

	// Then the terminal error, exactly once.
	it, err := buf.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, term, it.err)

	for i := 0; i < 2; i++ {
		_, err = buf.Pop(ctx)
		require.ErrorIs(t, err, errspkg.ErrSubscriptionClosed)
	}
}

func TestBufferCloseWithoutTerminal(t *testing.T) {
	buf := newBuffer(4, OverflowBlock)
	buf.Close(nil)

	_, err := buf.Pop(context.Background())
	require.ErrorIs(t, err, errspkg.ErrSubscriptionClosed)
}

func TestBufferCloseFirstCallWins(t *testing.T) {
	buf := newBuffer(4, OverflowBlock)
	first := errors.New("first")
	buf.Close(first)
	buf.Close(errors.New("second"))

	it, err := buf.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, it.err)
}

func TestBufferPopWakesOnClose(t *testing.T) {
	buf := newBuffer(4, OverflowBlock)

	popped := make(chan error, 1)
	go func() {
		_, err := buf.Pop(context.Background())
		popped <- err
	}()

	time.Sleep(20 * time.Millisecond)
	buf.Close(nil)

	select {
	case err := <-popped:
		require.ErrorIs(t, err, errspkg.ErrSubscriptionClosed)
	case <-time.After(time.Second):
		t.Fatal("pop did not observe close")
	}
}

func TestBufferPopHonorsContext(t *testing.T) {
	buf := newBuffer(4, OverflowBlock)

	ctx, cancel := context.WithCancel(context.Background())
	popped := make(chan error, 1)
	go func() {
		_, err := buf.Pop(ctx)
		popped <- err
	}()

	cancel()
	select {
	case err := <-popped:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("pop did not observe cancellation")
	}
}
