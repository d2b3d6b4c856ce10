package health

import (
	"context"
	"time"
)

// Watch probes target immediately and then every interval, handing each
// result to fn. It returns ctx.Err() once ctx is cancelled; an in-flight
// probe is aborted because its request is bound to ctx.
func (p *Prober) Watch(ctx context.Context, target string, interval, timeout time.Duration, fn func(Result)) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r := p.Probe(ctx, target, timeout)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fn(r)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
