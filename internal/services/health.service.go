package services

import (
	"context"
	"fmt"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	checks map[string]Pinger
}

// NewHealthService takes named dependencies; nil entries are skipped.
func NewHealthService(checks map[string]Pinger) *HealthService {
	s := &HealthService{checks: make(map[string]Pinger, len(checks))}
	for name, p := range checks {
		if p != nil {
			s.checks[name] = p
		}
	}
	return s
}

// Get returns the first failing dependency.
func (s *HealthService) Get(ctx context.Context) error {
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
