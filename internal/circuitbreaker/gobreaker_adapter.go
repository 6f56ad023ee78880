// Package circuitbreaker provides circuit breaker functionality using
// Sony's gobreaker, protecting the service from hammering an enrichment
// provider that is already failing.
package circuitbreaker

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	apperrors "enrich-service/internal/common/errors"
	"enrich-service/internal/common/logging"
)

// Config holds the configuration for a circuit breaker
type Config struct {
	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open
	Timeout time.Duration
	// MaxConcurrentRequests is the number of requests allowed in half-open state
	MaxConcurrentRequests uint32
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		MaxFailures:           5,
		Timeout:               60 * time.Second,
		MaxConcurrentRequests: 1,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.MaxFailures == 0 {
		return fmt.Errorf("MaxFailures must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// GoBreakerAdapter wraps gobreaker.CircuitBreaker for provider calls
type GoBreakerAdapter struct {
	name    string
	breaker *gobreaker.CircuitBreaker
}

// New creates a named circuit breaker with the given configuration
func New(name string, config Config) *GoBreakerAdapter {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxConcurrentRequests,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		// A subject the provider has no record for is a healthy answer,
		// not a provider outage.
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsType(err, apperrors.ErrTypeNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	}

	return &GoBreakerAdapter{
		name:    name,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Execute runs fn through the circuit breaker. When the circuit is open
// the call fails fast with a connection error instead of reaching the
// provider.
func (a *GoBreakerAdapter) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := a.breaker.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperrors.ConnectionError(
			fmt.Sprintf("circuit breaker %s is open", a.name), err)
	}
	return result, err
}

// State returns the current breaker state as a string
func (a *GoBreakerAdapter) State() string {
	return a.breaker.State().String()
}
