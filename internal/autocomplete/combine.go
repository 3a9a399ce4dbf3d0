package autocomplete

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"filterbar/internal/filter"
)

// Combine queries every source in parallel and concatenates the results in
// source order. A failing source does not hide the others: their results
// are returned together with the joined errors.
func Combine(sources ...filter.Autocompleter) filter.Autocompleter {
	return filter.AutocompleterFunc(func(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
		results := make([][]filter.Suggestion, len(sources))
		errs := make([]error, len(sources))

		g, gctx := errgroup.WithContext(ctx)
		for i, src := range sources {
			g.Go(func() error {
				results[i], errs[i] = src.Suggestions(gctx, sc)
				// Source errors are joined below; only cancellation stops the group.
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil
		}

		var out []filter.Suggestion
		for _, r := range results {
			out = append(out, r...)
		}
		return out, errors.Join(errs...)
	})
}

// Map post-processes the results of src with fn.
func Map(src filter.Autocompleter, fn func([]filter.Suggestion) []filter.Suggestion) filter.Autocompleter {
	return filter.AutocompleterFunc(func(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
		items, err := src.Suggestions(ctx, sc)
		if err != nil || items == nil {
			return items, err
		}
		return fn(items), nil
	})
}
