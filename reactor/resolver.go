package reactor

import (
	"context"
	"net"
	"time"
)

// Resolve issues a name lookup in the background and schedules cb on the
// loop with the outcome. The returned cancel function aborts a lookup whose
// waiter has gone away; the completion still runs, carrying the
// cancellation error.
func (r *Reactor) Resolve(host string, timeout time.Duration, cb func(addrs []string, err error)) context.CancelFunc {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	r.Background("resolve "+host, func() func() {
		addrs, err := net.DefaultResolver.LookupHost(ctx, host)
		cancel()
		return func() {
			cb(addrs, err)
		}
	})
	return cancel
}
