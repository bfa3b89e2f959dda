// Package boost holds the named score transforms a search can be wrapped in.
package boost

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

// Built-in transform names.
const (
	FieldValueFactor = "field_value_factor"
	Recency          = "recency"
)

// Factory instantiates a transform from its configured parameters.
type Factory func(params map[string]string, now time.Time) (*query.Boost, error)

// Registry maps transform names to factories.
type Registry struct {
	factories map[string]Factory
	now       func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock recency transforms measure age against.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithFactory registers an additional transform.
func WithFactory(name string, f Factory) Option {
	return func(r *Registry) { r.factories[name] = f }
}

// NewRegistry creates a registry holding the built-in transforms.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: map[string]Factory{
			FieldValueFactor: newFieldValueFactor,
			Recency:          newRecency,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Names returns the registered transform names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// New instantiates the transform name.
func (r *Registry) New(name string, params map[string]string) (*query.Boost, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBoost, name)
	}
	b, err := f(params, r.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrBoostTransform, name, err)
	}
	b.Name = name
	return b, nil
}

// Validate checks that name is known and params instantiate.
func Validate(name string, params map[string]string) error {
	_, err := NewRegistry().New(name, params)
	return err
}

// --- field_value_factor ---

// newFieldValueFactor multiplies the score by modifier(factor * value) of a
// numeric field. Params: field (required), factor, modifier
// (none|log1p|sqrt), missing.
func newFieldValueFactor(params map[string]string, _ time.Time) (*query.Boost, error) {
	field := params["field"]
	if field == "" {
		return nil, fmt.Errorf("param field is required")
	}
	factor, err := floatParam(params, "factor", 1)
	if err != nil {
		return nil, err
	}
	missing, err := floatParam(params, "missing", 1)
	if err != nil {
		return nil, err
	}
	var modify func(float64) float64
	switch params["modifier"] {
	case "", "none":
		modify = func(v float64) float64 { return v }
	case "log1p":
		modify = func(v float64) float64 { return math.Log1p(max(v, 0)) }
	case "sqrt":
		modify = func(v float64) float64 { return math.Sqrt(max(v, 0)) }
	default:
		return nil, fmt.Errorf("unknown modifier %q", params["modifier"])
	}

	return &query.Boost{
		Params: params,
		Fields: []string{field},
		Score: func(score float64, fields result.Fields) float64 {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields.First(field)), 64)
			if err != nil {
				v = missing
			}
			return score * modify(factor*v)
		},
	}, nil
}

// --- recency ---

// newRecency halves the score every half_life_days of document age.
// Params: field (default _changeDate), half_life_days (default 365).
// Documents without a parseable date keep their score.
func newRecency(params map[string]string, now time.Time) (*query.Boost, error) {
	field := params["field"]
	if field == "" {
		field = "_changeDate"
	}
	halfLife, err := floatParam(params, "half_life_days", 365)
	if err != nil {
		return nil, err
	}
	if halfLife <= 0 {
		return nil, fmt.Errorf("half_life_days must be positive, got %v", halfLife)
	}

	return &query.Boost{
		Params: params,
		Fields: []string{field},
		Score: func(score float64, fields result.Fields) float64 {
			t, err := query.ParseDate(strings.ToUpper(fields.First(field)))
			if err != nil {
				return score
			}
			days := max(now.Sub(t).Hours()/24, 0)
			return score * math.Pow(0.5, days/halfLife)
		},
	}, nil
}

func floatParam(params map[string]string, name string, def float64) (float64, error) {
	s := strings.TrimSpace(params[name])
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", name, err)
	}
	return v, nil
}
