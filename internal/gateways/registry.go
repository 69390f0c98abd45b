package gateways

import (
	"fmt"
	"sort"
	"time"

	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings tunes the per-backend circuit breakers. Threshold is
// the request count a window needs before the failure ratio can trip the
// breaker (and the half-open probe budget); Timeout is how long an open
// breaker stays open.
type BreakerSettings struct {
	Threshold uint32
	Timeout   time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{Threshold: 10, Timeout: 30 * time.Second}
}

// Registry maps stable gateway identifiers to backend implementations.
// Each backend gets its own circuit breaker; backend calls must go through
// it so a flapping provider cannot exhaust the call path.
type Registry struct {
	backends map[string]Backend
	breakers map[string]*gobreaker.CircuitBreaker[*GatewayResponse]
	breaker  BreakerSettings
}

func NewRegistry(backends ...Backend) *Registry {
	return NewRegistryWithBreaker(DefaultBreakerSettings(), backends...)
}

// NewRegistryWithBreaker builds a registry whose breakers use the given
// settings instead of the defaults.
func NewRegistryWithBreaker(settings BreakerSettings, backends ...Backend) *Registry {
	if settings.Threshold == 0 {
		settings.Threshold = DefaultBreakerSettings().Threshold
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultBreakerSettings().Timeout
	}
	r := &Registry{
		backends: make(map[string]Backend),
		breakers: make(map[string]*gobreaker.CircuitBreaker[*GatewayResponse]),
		breaker:  settings,
	}

	if len(backends) == 0 {
		r.Register(NewSandboxBackend("sandbox",
			WithLatency(200*time.Millisecond),
			WithFailureRate(0.05),
		))
		r.Register(NewSandboxBackend("sandbox-alt",
			WithLatency(300*time.Millisecond),
			WithFailureRate(0.08),
		))
	} else {
		for _, b := range backends {
			r.Register(b)
		}
	}

	return r
}

func (r *Registry) Register(b Backend) {
	r.backends[b.Name()] = b
	threshold := r.breaker.Threshold
	r.breakers[b.Name()] = gobreaker.NewCircuitBreaker[*GatewayResponse](gobreaker.Settings{
		Name:        b.Name(),
		MaxRequests: threshold,
		Interval:    60 * time.Second,
		Timeout:     r.breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.6
		},
	})
}

// Resolve returns the backend and its circuit breaker for the given
// identifier. An unset or unrecognized identifier is a configuration
// fault, not a transactional failure.
func (r *Registry) Resolve(name string) (Backend, *gobreaker.CircuitBreaker[*GatewayResponse], error) {
	if name == "" {
		return nil, nil, fmt.Errorf("no gateway set on payment: %w", errors.ErrGatewayNotConfigured)
	}
	b, ok := r.backends[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown gateway %q: %w", name, errors.ErrGatewayNotConfigured)
	}
	return b, r.breakers[name], nil
}

// List returns the registered gateways in deterministic order.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.backends))
	for name := range r.backends {
		infos = append(infos, Info{ID: name, Name: name})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
