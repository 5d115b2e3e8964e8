package health

import (
	"context"
	"sort"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an upstream failure; search still answers with fallbacks.
	Degraded Status = "degraded"
	// Unhealthy indicates the recent-query store is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each probe.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	upstream map[string]Checker
	timeout  time.Duration
}

// New creates a Service. upstream maps a component name (e.g. "classifier",
// "products") to its probe; nil entries are skipped.
func New(db DBPinger, upstream map[string]Checker) *Service {
	checks := make(map[string]Checker, len(upstream))
	for name, c := range upstream {
		if c != nil {
			checks[name] = c
		}
	}
	return &Service{db: db, upstream: checks, timeout: DefaultCheckTimeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.upstream)+1)

	status := Healthy
	if err := s.probe(ctx, s.db.Ping); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	names := make([]string, 0, len(s.upstream))
	for name := range s.upstream {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.probe(ctx, s.upstream[name].HealthCheck); err != nil {
			checks[name] = CheckError
			if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}
