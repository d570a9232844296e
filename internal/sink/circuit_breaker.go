package sink

import (
	"context"
	"fmt"

	"loginetl/internal/config"
	"loginetl/pkg/circuitbreaker"
	"loginetl/pkg/models"
)

const breakerName = "user-logins-insert"

// CircuitBreakerConnector wraps every session it opens in a breaker that
// fails the remaining inserts fast once the store keeps rejecting rows.
type CircuitBreakerConnector struct {
	next Connector
	cfg  config.CircuitBreakerConfig
}

// NewCircuitBreakerConnector returns next unchanged when the breaker is disabled.
func NewCircuitBreakerConnector(next Connector, cfg config.CircuitBreakerConfig) Connector {
	if !cfg.Enabled {
		return next
	}
	return &CircuitBreakerConnector{next: next, cfg: cfg}
}

func (c *CircuitBreakerConnector) Open(ctx context.Context) (Session, error) {
	session, err := c.next.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &CircuitBreakerSession{
		next: session,
		cb:   circuitbreaker.NewWrapper(circuitbreaker.FromSettings(breakerName, c.cfg)),
	}, nil
}

type CircuitBreakerSession struct {
	next Session
	cb   *circuitbreaker.Wrapper
}

func (s *CircuitBreakerSession) Insert(ctx context.Context, rec models.CanonicalRecord) error {
	_, err := s.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, s.next.Insert(ctx, rec)
	})

	s.cb.RecordRequest(err == nil)

	if err != nil && s.cb.IsOpen() {
		return fmt.Errorf("circuit breaker is open for %s: %w", breakerName, err)
	}
	return err
}

func (s *CircuitBreakerSession) State() string {
	return s.cb.State().String()
}

func (s *CircuitBreakerSession) Close() error {
	return s.next.Close()
}
