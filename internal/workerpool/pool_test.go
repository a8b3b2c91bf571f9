package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(3)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 3, p.Size())

	d, err := New(0)
	require.NoError(t, err)
	defer d.Release()
	assert.Equal(t, DefaultSize(), d.Size())
}

func TestRun_AllTasks(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)
	defer p.Release()

	var count atomic.Int64
	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			count.Add(1)
			return nil
		}
	}

	require.NoError(t, p.Run(context.Background(), tasks))
	assert.Equal(t, int64(20), count.Load())
}

func TestRun_JoinsErrors(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)
	defer p.Release()

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var ok atomic.Int64

	err = p.Run(context.Background(), []Task{
		func(context.Context) error { return errA },
		func(context.Context) error { ok.Add(1); return nil },
		func(context.Context) error { return errB },
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, int64(1), ok.Load())
}

func TestRun_CancelledContext(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int64
	err = p.Run(ctx, []Task{func(context.Context) error { ran.Add(1); return nil }})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), ran.Load())
}

func TestRun_Empty(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	assert.NoError(t, p.Run(context.Background(), nil))
}
