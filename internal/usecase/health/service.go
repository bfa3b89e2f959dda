// Package health reports readiness of the search engine and its sinks.
package health

import (
	"context"
	"maps"
	"slices"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an auxiliary component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the index engine is unreachable.
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

// EngineCheck is the check name of the index engine.
const EngineCheck = "engine"

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	engine     Pinger
	components map[string]Pinger
}

// Option configures a Service.
type Option func(*Service)

// WithComponent adds an auxiliary check, e.g. a search log sink.
// A nil pinger is ignored.
func WithComponent(name string, p Pinger) Option {
	return func(s *Service) {
		if p != nil {
			s.components[name] = p
		}
	}
}

// New creates a Service around the index engine.
func New(engine Pinger, opts ...Option) *Service {
	s := &Service{engine: engine, components: make(map[string]Pinger)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components)+1)
	checks[EngineCheck] = check(ctx, s.engine)
	for _, name := range slices.Sorted(maps.Keys(s.components)) {
		checks[name] = check(ctx, s.components[name])
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[EngineCheck] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

// Ready reports whether the engine answers.
func (s *Service) Ready(ctx context.Context) bool {
	return check(ctx, s.engine) == CheckOK
}

func check(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
