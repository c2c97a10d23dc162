package database

import "context"

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe is one named dependency check.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// PoolProbe wraps a PostgreSQL pool as a health probe.
func PoolProbe(name string, p Pinger) Probe {
	return Probe{Name: name, Check: p.Ping}
}

// Health runs every probe and returns the failures keyed by probe name.
// An empty map means healthy.
func Health(ctx context.Context, probes ...Probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if err := p.Check(ctx); err != nil {
			failures[p.Name] = err.Error()
		}
	}
	return failures
}
