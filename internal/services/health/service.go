package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Service runs dependency checks for the health endpoint.
type Service struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewService constructs a new health service. A nil check is skipped.
func NewService(checks map[string]Check) *Service {
	filtered := make(map[string]Check, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &Service{checks: filtered, timeout: 2 * time.Second}
}

// Status runs every check concurrently and reports per-dependency results.
// One failing check does not cancel the others.
func (s *Service) Status(ctx context.Context) (bool, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var mu sync.Mutex
	ok := true
	out := make(map[string]string, len(s.checks))

	var g errgroup.Group
	for name, check := range s.checks {
		g.Go(func() error {
			result := "ok"
			if err := check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			out[name] = result
			if result != "ok" {
				ok = false
			}
			return nil
		})
	}
	_ = g.Wait()
	return ok, out
}
