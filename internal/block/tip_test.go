package block_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ledger-indexer/internal/block"
)

func TestTracker_Monotonic(t *testing.T) {
	tracker := block.NewTracker()

	assert.True(t, tracker.Publish(10))
	assert.False(t, tracker.Publish(7))
	assert.False(t, tracker.Publish(10))
	assert.Equal(t, uint64(10), tracker.Tip())

	assert.True(t, tracker.Publish(11))
	assert.Equal(t, uint64(11), tracker.Tip())
}

func TestTracker_ConcurrentPublish(t *testing.T) {
	tracker := block.NewTracker()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n uint64) {
			defer wg.Done()
			tracker.Publish(n)
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, uint64(50), tracker.Tip())
}

func TestTracker_WaitFor(t *testing.T) {
	tracker := block.NewTracker()
	tracker.Publish(5)

	tip, err := tracker.WaitFor(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), tip)

	result := make(chan uint64, 1)
	go func() {
		tip, err := tracker.WaitFor(context.Background(), 8)
		if err == nil {
			result <- tip
		}
	}()

	tracker.Publish(6)
	tracker.Publish(9)

	select {
	case tip := <-result:
		assert.Equal(t, uint64(9), tip)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitFor did not return after the tip advanced")
	}
}

func TestTracker_WaitFor_Cancelled(t *testing.T) {
	tracker := block.NewTracker()
	tracker.Publish(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	tip, err := tracker.WaitFor(ctx, 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, uint64(1), tip)
}
