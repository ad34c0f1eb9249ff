package limits

import (
	"context"
	"errors"
	"sync"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/ports"
)

// Chain asks each resolver in turn and returns the first known limit.
type Chain []ports.ModelLimitsResolver

func (c Chain) Resolve(ctx context.Context, modelID string) (int64, error) {
	for _, r := range c {
		limit, err := r.Resolve(ctx, modelID)
		if err == nil && limit > 0 {
			return limit, nil
		}
		if err != nil && !errors.Is(err, domain.ErrUnresolvedModelLimit) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
		}
	}
	return 0, domain.ErrUnresolvedModelLimit
}

type cachedLimit struct {
	limit int64
	known bool
}

// Cached memoizes another resolver, unknown results included.
type Cached struct {
	next ports.ModelLimitsResolver

	mu   sync.Mutex
	memo map[string]cachedLimit
}

// NewCached wraps next with a memo.
func NewCached(next ports.ModelLimitsResolver) *Cached {
	return &Cached{next: next, memo: make(map[string]cachedLimit)}
}

func (c *Cached) Resolve(ctx context.Context, modelID string) (int64, error) {
	c.mu.Lock()
	hit, ok := c.memo[modelID]
	c.mu.Unlock()
	if ok {
		if !hit.known {
			return 0, domain.ErrUnresolvedModelLimit
		}
		return hit.limit, nil
	}

	limit, err := c.next.Resolve(ctx, modelID)
	if err != nil {
		// Cancellation says nothing about the model
		if ctx.Err() != nil {
			return 0, err
		}
		c.store(modelID, cachedLimit{})
		return 0, err
	}
	c.store(modelID, cachedLimit{limit: limit, known: true})
	return limit, nil
}

func (c *Cached) store(modelID string, v cachedLimit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[modelID] = v
}

// Default builds the resolver the status line uses: the built-in table first,
// then the local catalog, memoized.
func Default(catalog *Catalog) *Cached {
	chain := Chain{NewStatic()}
	if catalog != nil {
		chain = append(chain, catalog)
	}
	return NewCached(chain)
}
