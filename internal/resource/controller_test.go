package resource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.Usage().MemoryInUse)

	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	var le *LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LimitError{Requested: 20, InUse: 90, Limit: 100}, *le)

	c.ReleaseMemory(50)
	require.NoError(t, c.AcquireMemory(20))

	u := c.Usage()
	assert.Equal(t, int64(60), u.MemoryInUse)
	assert.Equal(t, int64(90), u.MemoryPeak)
	assert.Equal(t, int64(100), u.MemoryLimit)
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	c.ReleaseMemory(500)
	assert.Equal(t, Usage{MemoryInUse: 500, MemoryPeak: 1000}, c.Usage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.DeadlineExceeded)

	c.ReleaseWorker()
	require.NoError(t, c.AcquireWorker(t.Context()))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	assert.NoError(t, c.AcquireWorker(context.Background()))
	assert.NoError(t, c.AcquireIO(context.Background(), 10))
	c.ReleaseMemory(10)
	c.ReleaseWorker()
	assert.Equal(t, Usage{}, c.Usage())

	var buf bytes.Buffer
	assert.Same(t, &buf, NewRateLimitedWriter(context.Background(), &buf, nil))
}

func TestController_IOCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 3<<20))
}

func TestRateLimitedStreams(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	payload := bytes.Repeat([]byte{0xAB}, 4096)

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	r := NewRateLimitedReader(context.Background(), &buf, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(2*len(payload)), c.Usage().IOBytes)
}
