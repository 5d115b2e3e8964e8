package health

import "context"

// DBPinger checks key-value store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker probes an upstream dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
