package autocomplete

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filterbar/internal/filter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(ms)
}

type versioned struct {
	calls atomic.Int32
}

func (v *versioned) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	n := v.calls.Add(1)
	return Values(fmt.Sprintf("%s-v%d", sc.Input, n)), nil
}

func newSWR(t *testing.T) (*StaleWhileRevalidate, *versioned, *fakeClock, *[]string) {
	t.Helper()
	clock := &fakeClock{}
	clock.Set(0)
	inner := &versioned{}
	var mu sync.Mutex
	updates := &[]string{}
	swr := NewStaleWhileRevalidate(inner,
		WithMaxAge(1000*time.Millisecond),
		WithStaleAge(5000*time.Millisecond),
		WithClock(clock.Now),
		WithOnUpdate(func(key string, items []filter.Suggestion) {
			mu.Lock()
			defer mu.Unlock()
			*updates = append(*updates, items[0].Label)
		}),
	)
	return swr, inner, clock, updates
}

func TestSWR_Fresh(t *testing.T) {
	swr, inner, clock, _ := newSWR(t)
	ctx := context.Background()

	items, err := swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q-v1"}, labels(items))

	clock.Set(999)
	items, err = swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q-v1"}, labels(items))
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestSWR_StaleReturnsCachedAndRevalidates(t *testing.T) {
	swr, inner, clock, updates := newSWR(t)
	ctx := context.Background()

	_, err := swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)

	clock.Set(1500)
	items, err := swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q-v1"}, labels(items))

	swr.Wait()
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, []string{"q-v2"}, *updates)

	items, err = swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q-v2"}, labels(items))
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestSWR_ExpiredFetchesSynchronously(t *testing.T) {
	swr, inner, clock, updates := newSWR(t)
	ctx := context.Background()

	_, err := swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)

	clock.Set(6000)
	items, err := swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q-v2"}, labels(items))

	swr.Wait()
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Empty(t, *updates)
}

func TestSWR_OneRevalidationPerKey(t *testing.T) {
	block := make(chan struct{})
	var calls atomic.Int32
	inner := filter.AutocompleterFunc(func(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
		if calls.Add(1) > 1 {
			<-block
		}
		return Values("x"), nil
	})
	clock := &fakeClock{}
	clock.Set(0)
	swr := NewStaleWhileRevalidate(inner, WithMaxAge(time.Second), WithStaleAge(10*time.Second), WithClock(clock.Now))

	ctx := context.Background()
	_, err := swr.Suggestions(ctx, input("q"))
	require.NoError(t, err)

	clock.Set(2000)
	for range 3 {
		_, err := swr.Suggestions(ctx, input("q"))
		require.NoError(t, err)
	}
	close(block)
	swr.Wait()
	assert.Equal(t, int32(2), calls.Load())
}

func TestSWR_KeysByField(t *testing.T) {
	swr, inner, _, _ := newSWR(t)
	ctx := context.Background()
	a := &filter.FieldConfig{Key: "a"}
	b := &filter.FieldConfig{Key: "b"}

	_, err := swr.Suggestions(ctx, filter.SuggestionContext{Input: "q", Field: a})
	require.NoError(t, err)
	_, err = swr.Suggestions(ctx, filter.SuggestionContext{Input: "q", Field: b})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	swr.Invalidate("")
	_, err = swr.Suggestions(ctx, filter.SuggestionContext{Input: "q", Field: a})
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestSWR_SupersededAsyncRequestNotCached(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	fetch := func(ctx context.Context, query string) ([]filter.Suggestion, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return Values(query + "-hit"), nil
	}
	swr := NewStaleWhileRevalidate(NewAsync(fetch), WithMaxAge(time.Minute))
	ctx := context.Background()

	first := make(chan []filter.Suggestion, 1)
	go func() {
		items, _ := swr.Suggestions(ctx, input("a"))
		first <- items
	}()
	<-started

	items, err := swr.Suggestions(ctx, input("ab"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab-hit"}, labels(items))
	assert.Nil(t, <-first)

	items, err = swr.Suggestions(ctx, input("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-hit"}, labels(items))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSWR_AbortedRevalidationKeepsEntry(t *testing.T) {
	clock := &fakeClock{}
	clock.Set(0)
	var calls atomic.Int32
	started := make(chan struct{})
	fetch := func(ctx context.Context, query string) ([]filter.Suggestion, error) {
		n := calls.Add(1)
		if n == 2 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return Values(fmt.Sprintf("%s-v%d", query, n)), nil
	}
	var mu sync.Mutex
	var updates []string
	swr := NewStaleWhileRevalidate(NewAsync(fetch),
		WithMaxAge(1000*time.Millisecond),
		WithStaleAge(5000*time.Millisecond),
		WithClock(clock.Now),
		WithOnUpdate(func(key string, items []filter.Suggestion) {
			mu.Lock()
			defer mu.Unlock()
			updates = append(updates, labels(items)...)
		}),
	)
	ctx := context.Background()

	items, err := swr.Suggestions(ctx, input("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-v1"}, labels(items))

	clock.Set(1500)
	items, err = swr.Suggestions(ctx, input("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-v1"}, labels(items))
	<-started

	// A foreground request on the same source supersedes the refresh.
	items, err = swr.Suggestions(ctx, input("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b-v3"}, labels(items))
	swr.Wait()

	mu.Lock()
	assert.Empty(t, updates)
	mu.Unlock()

	items, err = swr.Suggestions(ctx, input("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a-v1"}, labels(items))
	swr.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a-v4"}, updates)
}
