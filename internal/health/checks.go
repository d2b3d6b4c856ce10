package health

import (
	"context"
	"fmt"
	"time"
)

// Check is one dependency the aggregator probes. Run must honour ctx; the
// aggregator stops waiting once Timeout passes either way.
type Check struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Run      func(ctx context.Context) Result
}

// Pinger is satisfied by *sql.DB and most cache clients
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingCheck reports unhealthy when Ping fails
func PingCheck(name string, p Pinger, required bool, timeout time.Duration) Check {
	return Check{
		Name:     name,
		Required: required,
		Timeout:  timeout,
		Run: func(ctx context.Context) Result {
			if err := p.PingContext(ctx); err != nil {
				return Unhealthy(fmt.Sprintf("%s ping failed: %v", name, err))
			}
			return Healthy(fmt.Sprintf("%s connection is healthy", name))
		},
	}
}

// DatabaseCheck is a required ping of the metric store
func DatabaseCheck(db Pinger, timeout time.Duration) Check {
	return PingCheck("database", db, true, timeout)
}

// ServiceCheck probes an external HTTP health endpoint
func ServiceCheck(name, target string, required bool, prober *Prober, timeout time.Duration) Check {
	return Check{
		Name:     name,
		Required: required,
		Timeout:  timeout,
		Run: func(ctx context.Context) Result {
			return prober.Probe(ctx, target, timeout)
		},
	}
}
