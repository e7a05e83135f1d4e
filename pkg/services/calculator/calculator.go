package calculator

import (
	"context"
	"fmt"
	"sync"

	"github.com/de-tools/tco-atlas/pkg/metrics"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/services/cost"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Calculator prices one request against every registered target.
type Calculator interface {
	Calculate(ctx context.Context, req domain.ResourceRequest) (map[string]domain.CostBreakdown, error)
	Targets() []string
}

type calculator struct {
	registry cost.Registry
}

func New(registry cost.Registry) (Calculator, error) {
	if registry == nil {
		return nil, fmt.Errorf("cost registry cannot be nil")
	}
	if len(registry.ListTargets()) == 0 {
		return nil, fmt.Errorf("at least one cost model must be registered")
	}
	return &calculator{registry: registry}, nil
}

func (c *calculator) Targets() []string {
	return c.registry.ListTargets()
}

// Calculate returns a complete result for every target or an error; partial results are never returned.
func (c *calculator) Calculate(ctx context.Context, req domain.ResourceRequest) (map[string]domain.CostBreakdown, error) {
	logger := zerolog.Ctx(ctx)
	models := c.registry.Models()

	var mu sync.Mutex
	results := make(map[string]domain.CostBreakdown, len(models))

	g, gctx := errgroup.WithContext(ctx)
	for _, model := range models {
		g.Go(func() error {
			b, err := estimate(gctx, model, req)
			metrics.ObserveCalculation(model.Target(), err)
			if err != nil {
				logger.Error().Err(err).Str("target", model.Target()).Msg("cost model failed")
				return fmt.Errorf("%w: target %s: %v", domain.ErrInternalComputation, model.Target(), err)
			}

			mu.Lock()
			results[model.Target()] = *b
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func estimate(ctx context.Context, model cost.Model, req domain.ResourceRequest) (b *domain.CostBreakdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	b, err = model.Estimate(ctx, req)
	if err == nil && b == nil {
		err = fmt.Errorf("model returned no breakdown")
	}
	return b, err
}
