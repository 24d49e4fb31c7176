// Package connectivity answers whether the network is usable right now.
// Answers are best effort and may be stale by the time they are acted upon.
package connectivity

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/logging"
)

// Oracle reports network availability.
type Oracle interface {
	IsOnline(ctx context.Context) bool
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context) bool

// IsOnline implements Oracle.
func (f Func) IsOnline(ctx context.Context) bool {
	return f(ctx)
}

// Static always gives the same answer.
func Static(online bool) Oracle {
	return Func(func(context.Context) bool { return online })
}

// Online is an oracle that is always online.
var Online = Static(true)

// Offline is an oracle that is always offline.
var Offline = Static(false)

// Interfaces reports online when any non-loopback interface is up and has an
// address. It stands in for "a Wi-Fi or cellular transport is active".
func Interfaces() Oracle {
	return Func(func(ctx context.Context) bool {
		ifaces, err := net.Interfaces()
		if err != nil {
			logging.FromContext(ctx).Debug().Err(err).Msg("Listing network interfaces failed")
			return false
		}
		for _, iface := range ifaces {
			if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
				continue
			}
			addrs, err := iface.Addrs()
			if err == nil && len(addrs) > 0 {
				return true
			}
		}
		return false
	})
}

// Probe reports online when a TCP connection to addr succeeds within timeout.
// A zero timeout uses constants.ProbeTimeout.
func Probe(addr string, timeout time.Duration) Oracle {
	if timeout <= 0 {
		timeout = constants.ProbeTimeout
	}
	return Func(func(ctx context.Context) bool {
		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			logging.FromContext(ctx).Debug().Err(err).Str("addr", addr).Msg("Connectivity probe failed")
			return false
		}
		_ = conn.Close()
		return true
	})
}

// Any reports online when any of oracles does. It asks them in order.
func Any(oracles ...Oracle) Oracle {
	return Func(func(ctx context.Context) bool {
		for _, o := range oracles {
			if o != nil && o.IsOnline(ctx) {
				return true
			}
		}
		return false
	})
}

const cachedKey = "online"

// Cached memoizes another oracle for a TTL.
type Cached struct {
	oracle Oracle
	cache  *cache.Cache
	ttl    time.Duration
}

var _ Oracle = (*Cached)(nil)

// NewCached wraps oracle. A zero ttl uses constants.ConnectivityTTL.
func NewCached(oracle Oracle, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = constants.ConnectivityTTL
	}
	return &Cached{
		oracle: oracle,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

// IsOnline implements Oracle.
func (c *Cached) IsOnline(ctx context.Context) bool {
	if v, ok := c.cache.Get(cachedKey); ok {
		return v.(bool)
	}
	online := c.oracle.IsOnline(ctx)
	c.cache.Set(cachedKey, online, c.ttl)
	return online
}

// Invalidate drops the memoized answer.
func (c *Cached) Invalidate() {
	c.cache.Delete(cachedKey)
}

// Toggle is an oracle whose answer is switched by hand. Useful for demos and tests.
type Toggle struct {
	online atomic.Bool
}

// NewToggle creates a Toggle starting at online.
func NewToggle(online bool) *Toggle {
	t := &Toggle{}
	t.Set(online)
	return t
}

// Set changes the answer.
func (t *Toggle) Set(online bool) {
	t.online.Store(online)
}

// IsOnline implements Oracle.
func (t *Toggle) IsOnline(context.Context) bool {
	return t.online.Load()
}
