package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted reports that no candidate produced a usable result.
var ErrExhausted = errors.New("catalog: all candidates failed")

// FirstSuccess calls attempt for each candidate in order and stops at the first one that
// succeeds, returning its result and the candidate that produced it. When every attempt fails
// the error wraps ErrExhausted together with each individual failure.
func FirstSuccess[T any](ctx context.Context, candidates []string, attempt func(context.Context, string) (T, error)) (T, string, error) {
	var zero T
	errs := []error{ErrExhausted}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := attempt(ctx, candidate)
		if err == nil {
			return result, candidate, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", candidate, err))
	}
	return zero, "", errors.Join(errs...)
}
