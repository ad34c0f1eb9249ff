package ports

import "context"

// ModelLimitsResolver maps a model id to its context window size in tokens.
type ModelLimitsResolver interface {
	// Resolve returns the context limit for modelID, or
	// domain.ErrUnresolvedModelLimit when it is not known.
	Resolve(ctx context.Context, modelID string) (int64, error)
}
