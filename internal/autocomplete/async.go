package autocomplete

import (
	"context"
	"errors"
	"sync"
	"time"

	"filterbar/internal/filter"
)

// FetchFunc loads suggestions for a query. It must honour ctx cancellation.
type FetchFunc func(ctx context.Context, query string) ([]filter.Suggestion, error)

// Resolver is implemented by sources that cancel superseded requests. ok is
// false when the request was aborted: its empty result does not answer the
// query and must not be cached.
type Resolver interface {
	Resolve(ctx context.Context, sc filter.SuggestionContext) (items []filter.Suggestion, ok bool, err error)
}

// AsyncOption configures an Async autocompleter.
type AsyncOption func(*Async)

// WithMinChars skips fetching until the input has at least n characters.
func WithMinChars(n int) AsyncOption {
	return func(a *Async) { a.minChars = n }
}

// WithDebounce waits d after the last call before fetching.
func WithDebounce(d time.Duration) AsyncOption {
	return func(a *Async) { a.debounce = d }
}

// WithCache keeps results per query for the lifetime of the instance.
func WithCache(on bool) AsyncOption {
	return func(a *Async) { a.cacheOn = on }
}

// Async wraps a fetch function with a minimum length, a trailing-edge
// debounce, a query cache and cancellation of superseded requests. Only the
// latest call can return results; earlier calls return nil, nil.
type Async struct {
	fetch    FetchFunc
	minChars int
	debounce time.Duration
	cacheOn  bool
	cache    *Cache[[]filter.Suggestion]

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewAsync creates an Async autocompleter around fetch.
func NewAsync(fetch FetchFunc, opts ...AsyncOption) *Async {
	a := &Async{fetch: fetch, cache: NewCache[[]filter.Suggestion]()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Suggestions implements filter.Autocompleter.
func (a *Async) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	items, _, err := a.Resolve(ctx, sc)
	return items, err
}

// Resolve implements Resolver.
func (a *Async) Resolve(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, bool, error) {
	query := sc.Input

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	gen := a.gen
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()
	defer a.finish(gen, cancel)

	if len([]rune(query)) < a.minChars {
		return nil, true, nil
	}
	if a.cacheOn {
		if items, ok := a.cache.Get(query); ok {
			return items, true, nil
		}
	}

	if a.debounce > 0 {
		timer := time.NewTimer(a.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, nil
		case <-timer.C:
		}
	}

	items, err := a.fetch(ctx, query)
	if ctx.Err() != nil || !a.current(gen) {
		return nil, false, nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if a.cacheOn {
		a.cache.Put(query, items)
	}
	return items, true, nil
}

func (a *Async) current(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen == gen
}

func (a *Async) finish(gen uint64, cancel context.CancelFunc) {
	a.mu.Lock()
	if a.gen == gen {
		a.cancel = nil
	}
	a.mu.Unlock()
	cancel()
}

// Abort cancels the in-flight request, if any. It is safe to call
// repeatedly.
func (a *Async) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// ClearCache drops every cached query.
func (a *Async) ClearCache() {
	a.cache.Clear()
}
