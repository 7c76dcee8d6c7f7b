package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := New(4)

	var n atomic.Int64
	for i := 0; i < 20; i++ {
		require.NoError(t, p.Go(context.Background(), func() { n.Add(1) }))
	}
	p.Wait()

	assert.Equal(t, int64(20), n.Load())
}

func TestPool_LimitsConcurrency(t *testing.T) {
	const size = 2
	p := New(size)

	var mu sync.Mutex
	var active, peak int

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Go(context.Background(), func() {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}))
	}
	p.Wait()

	assert.LessOrEqual(t, peak, size)
	assert.Greater(t, peak, 0)
}

func TestPool_GoRespectsCancelledContext(t *testing.T) {
	p := New(1)

	release := make(chan struct{})
	require.NoError(t, p.Go(context.Background(), func() { <-release }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Go(ctx, func() { t.Error("task must not run after cancellation") })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	p.Wait()
}
