package autocomplete

import (
	"context"
	"sync"
	"time"

	"filterbar/internal/filter"
)

// SWROption configures a StaleWhileRevalidate wrapper.
type SWROption func(*StaleWhileRevalidate)

// WithMaxAge sets how long an entry is served without refetching.
func WithMaxAge(d time.Duration) SWROption {
	return func(s *StaleWhileRevalidate) { s.maxAge = d }
}

// WithStaleAge sets how long an entry may be served while it is refreshed
// in the background. Older entries are refetched before returning.
func WithStaleAge(d time.Duration) SWROption {
	return func(s *StaleWhileRevalidate) { s.staleAge = d }
}

// WithOnUpdate is called after a background refresh replaces an entry.
func WithOnUpdate(fn func(key string, items []filter.Suggestion)) SWROption {
	return func(s *StaleWhileRevalidate) { s.onUpdate = fn }
}

// WithKeyFunc overrides how requests map to cache keys.
func WithKeyFunc(fn func(filter.SuggestionContext) string) SWROption {
	return func(s *StaleWhileRevalidate) { s.keyFunc = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SWROption {
	return func(s *StaleWhileRevalidate) { s.now = now }
}

type swrEntry struct {
	items     []filter.Suggestion
	fetchedAt time.Time
}

// StaleWhileRevalidate caches another autocompleter with two thresholds:
// fresh entries are returned as is, stale ones are returned and refreshed
// in the background, expired ones are refetched before returning.
type StaleWhileRevalidate struct {
	inner    filter.Autocompleter
	maxAge   time.Duration
	staleAge time.Duration
	onUpdate func(string, []filter.Suggestion)
	keyFunc  func(filter.SuggestionContext) string
	now      func() time.Time

	cache *Cache[swrEntry]

	mu         sync.Mutex
	refreshing map[string]bool
	wg         sync.WaitGroup
}

// NewStaleWhileRevalidate wraps inner. The defaults are a 30s max age and a
// 5m stale age.
func NewStaleWhileRevalidate(inner filter.Autocompleter, opts ...SWROption) *StaleWhileRevalidate {
	s := &StaleWhileRevalidate{
		inner:      inner,
		maxAge:     30 * time.Second,
		staleAge:   5 * time.Minute,
		keyFunc:    DefaultKey,
		now:        time.Now,
		cache:      NewCache[swrEntry](),
		refreshing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.staleAge < s.maxAge {
		s.staleAge = s.maxAge
	}
	return s
}

// DefaultKey keys a request by field, operator and input.
func DefaultKey(sc filter.SuggestionContext) string {
	key := sc.Input
	if sc.Operator != nil {
		key = sc.Operator.Key + "\x00" + key
	}
	if sc.Field != nil {
		key = sc.Field.Key + "\x00" + key
	}
	return key
}

// Suggestions implements filter.Autocompleter.
func (s *StaleWhileRevalidate) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	items, _, err := s.Resolve(ctx, sc)
	return items, err
}

// Resolve implements Resolver. Aborted inner requests are neither cached
// nor reported to onUpdate.
func (s *StaleWhileRevalidate) Resolve(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, bool, error) {
	key := s.keyFunc(sc)
	if e, ok := s.cache.Get(key); ok {
		age := s.now().Sub(e.fetchedAt)
		switch {
		case age < s.maxAge:
			return e.items, true, nil
		case age < s.staleAge:
			s.revalidate(ctx, key, sc)
			return e.items, true, nil
		}
	}

	items, ok, err := s.fetch(ctx, sc)
	if err != nil || !ok {
		return nil, false, err
	}
	s.cache.Put(key, swrEntry{items: items, fetchedAt: s.now()})
	return items, true, nil
}

// fetch asks the inner source, telling aborted requests apart from empty
// answers.
func (s *StaleWhileRevalidate) fetch(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, bool, error) {
	if r, ok := s.inner.(Resolver); ok {
		return r.Resolve(ctx, sc)
	}
	items, err := s.inner.Suggestions(ctx, sc)
	return items, ctx.Err() == nil, err
}

// revalidate starts one background refresh per key.
func (s *StaleWhileRevalidate) revalidate(ctx context.Context, key string, sc filter.SuggestionContext) {
	s.mu.Lock()
	if s.refreshing[key] {
		s.mu.Unlock()
		return
	}
	s.refreshing[key] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.refreshing, key)
			s.mu.Unlock()
		}()
		items, ok, err := s.fetch(context.WithoutCancel(ctx), sc)
		if err != nil || !ok {
			return
		}
		s.cache.Put(key, swrEntry{items: items, fetchedAt: s.now()})
		if s.onUpdate != nil {
			s.onUpdate(key, items)
		}
	}()
}

// Wait blocks until background refreshes have finished.
func (s *StaleWhileRevalidate) Wait() {
	s.wg.Wait()
}

// Invalidate drops the entry for key, or every entry when key is empty.
func (s *StaleWhileRevalidate) Invalidate(key string) {
	if key == "" {
		s.cache.Clear()
		return
	}
	s.cache.Delete(key)
}
