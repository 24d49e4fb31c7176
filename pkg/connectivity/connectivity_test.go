package connectivity_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap/pkg/connectivity"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	assert.True(t, connectivity.Online.IsOnline(ctx))
	assert.False(t, connectivity.Offline.IsOnline(ctx))
}

func TestAny(t *testing.T) {
	ctx := context.Background()
	assert.False(t, connectivity.Any().IsOnline(ctx))
	assert.False(t, connectivity.Any(connectivity.Offline, nil).IsOnline(ctx))
	assert.True(t, connectivity.Any(connectivity.Offline, connectivity.Online).IsOnline(ctx))
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	toggle := connectivity.NewToggle(true)
	counted := connectivity.Func(func(ctx context.Context) bool {
		calls.Add(1)
		return toggle.IsOnline(ctx)
	})

	cached := connectivity.NewCached(counted, time.Hour)
	ctx := context.Background()

	assert.True(t, cached.IsOnline(ctx))
	toggle.Set(false)
	assert.True(t, cached.IsOnline(ctx), "answer is memoized")
	assert.Equal(t, int32(1), calls.Load())

	cached.Invalidate()
	assert.False(t, cached.IsOnline(ctx))
	assert.Equal(t, int32(2), calls.Load())
}

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	ctx := context.Background()
	assert.True(t, connectivity.Probe(addr, time.Second).IsOnline(ctx))

	require.NoError(t, ln.Close())
	assert.False(t, connectivity.Probe(addr, 200*time.Millisecond).IsOnline(ctx))
}

func TestInterfacesDoesNotPanic(t *testing.T) {
	_ = connectivity.Interfaces().IsOnline(context.Background())
}
