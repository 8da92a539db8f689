package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecuteKeepsOrder(t *testing.T) {
	pool := NewPool(4, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * n, nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	tasks := pool.Execute(context.Background(), inputs)

	require.Len(t, tasks, len(inputs))
	for i, task := range tasks {
		assert.Equal(t, inputs[i], task.Input)
		assert.Equal(t, inputs[i]*inputs[i], task.Result)
		assert.NoError(t, task.Err)
	}
}

func TestPool_ErrorsDoNotStopOthers(t *testing.T) {
	errOdd := errors.New("odd")
	pool := NewPool(2, func(_ context.Context, n int) (string, error) {
		if n%2 == 1 {
			return "", errOdd
		}
		return "ok", nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4})
	failed := Failed(tasks)

	require.Len(t, failed, 2)
	assert.Equal(t, 1, failed[0].Input)
	assert.ErrorIs(t, failed[1].Err, errOdd)
	assert.Equal(t, "ok", tasks[1].Result)
	assert.Equal(t, "ok", tasks[3].Result)
}

func TestPool_RespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	pool := NewPool(3, func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})

	pool.Execute(context.Background(), make([]int, 20))
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	tasks := pool.Execute(ctx, []int{1, 2, 3})
	assert.Equal(t, int32(0), calls.Load())
	for _, task := range tasks {
		assert.ErrorIs(t, task.Err, context.Canceled)
	}
}

func TestNewPool_MinimumOneWorker(t *testing.T) {
	pool := NewPool(0, func(_ context.Context, n int) (int, error) { return n, nil })
	tasks := pool.Execute(context.Background(), []int{7})
	assert.Equal(t, 7, tasks[0].Result)
}
