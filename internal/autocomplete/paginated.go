package autocomplete

import (
	"context"
	"errors"
	"sync"

	"filterbar/internal/filter"
)

// Page is one page of results from a PageFunc.
type Page struct {
	Items      []filter.Suggestion
	NextCursor string
	HasMore    bool
	Total      int // -1 when unknown
}

// PageFunc loads the page after cursor. An empty cursor asks for the first
// page.
type PageFunc func(ctx context.Context, query, cursor string, limit int) (Page, error)

// Pager is implemented by sources that serve results a page at a time.
type Pager interface {
	LoadMore(ctx context.Context) ([]filter.Suggestion, error)
	Reset()
	HasMore() bool
	Total() int
}

// PageOption configures a Paginated autocompleter.
type PageOption func(*Paginated)

// WithPageSize sets the page size requested from the PageFunc.
func WithPageSize(n int) PageOption {
	return func(p *Paginated) { p.pageSize = n }
}

// WithMaxPages bounds how many pages are kept per query. Older pages are
// dropped first.
func WithMaxPages(n int) PageOption {
	return func(p *Paginated) { p.maxPages = n }
}

type pageSet struct {
	pages []Page
}

func (s pageSet) items() []filter.Suggestion {
	var out []filter.Suggestion
	for _, p := range s.pages {
		out = append(out, p.Items...)
	}
	return out
}

func (s pageSet) last() (Page, bool) {
	if len(s.pages) == 0 {
		return Page{}, false
	}
	return s.pages[len(s.pages)-1], true
}

// Paginated serves a paged source. Suggestions returns the pages loaded so
// far for the input, fetching the first one when needed; LoadMore appends
// the next page. In-flight requests are cancelled by newer ones the same
// way Async does.
type Paginated struct {
	fetch    PageFunc
	pageSize int
	maxPages int
	cache    *Cache[pageSet]

	mu     sync.Mutex
	query  string
	gen    uint64
	cancel context.CancelFunc
}

// NewPaginated creates a Paginated autocompleter. The defaults are 50 items
// per page and 10 pages per query.
func NewPaginated(fetch PageFunc, opts ...PageOption) *Paginated {
	p := &Paginated{fetch: fetch, pageSize: 50, maxPages: 10, cache: NewCache[pageSet]()}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxPages < 1 {
		p.maxPages = 1
	}
	return p
}

// Suggestions implements filter.Autocompleter.
func (p *Paginated) Suggestions(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, error) {
	items, _, err := p.Resolve(ctx, sc)
	return items, err
}

// Resolve implements Resolver.
func (p *Paginated) Resolve(ctx context.Context, sc filter.SuggestionContext) ([]filter.Suggestion, bool, error) {
	p.mu.Lock()
	if sc.Input != p.query {
		p.abortLocked()
		p.query = sc.Input
	}
	if set, ok := p.cache.Get(p.query); ok && len(set.pages) > 0 {
		p.mu.Unlock()
		return set.items(), true, nil
	}
	ctx, gen := p.beginLocked(ctx)
	p.mu.Unlock()
	return p.load(ctx, gen, sc.Input, "")
}

// LoadMore fetches the next page for the current query and returns every
// loaded item. Without more pages it returns what is loaded.
func (p *Paginated) LoadMore(ctx context.Context) ([]filter.Suggestion, error) {
	p.mu.Lock()
	query := p.query
	set, _ := p.cache.Get(query)
	last, ok := set.last()
	if !ok || !last.HasMore {
		p.mu.Unlock()
		return set.items(), nil
	}
	ctx, gen := p.beginLocked(ctx)
	p.mu.Unlock()
	items, _, err := p.load(ctx, gen, query, last.NextCursor)
	return items, err
}

func (p *Paginated) beginLocked(ctx context.Context) (context.Context, uint64) {
	p.abortLocked()
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	return ctx, p.gen
}

func (p *Paginated) abortLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Paginated) load(ctx context.Context, gen uint64, query, cursor string) ([]filter.Suggestion, bool, error) {
	page, err := p.fetch(ctx, query, cursor, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || p.gen != gen {
		return nil, false, nil
	}
	p.cancel = nil
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var set pageSet
	if cursor != "" {
		prev, _ := p.cache.Get(query)
		set.pages = append(set.pages, prev.pages...)
	}
	set.pages = append(set.pages, page)
	if len(set.pages) > p.maxPages {
		set.pages = set.pages[len(set.pages)-p.maxPages:]
	}
	p.cache.Put(query, set)
	return set.items(), true, nil
}

// Reset cancels any in-flight request and forgets the pages of the current
// query.
func (p *Paginated) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.abortLocked()
	p.cache.Delete(p.query)
	p.query = ""
}

// HasMore reports whether another page exists for the current query.
func (p *Paginated) HasMore() bool {
	last, ok := p.lastPage()
	return ok && last.HasMore
}

// Total returns the total reported by the source, or -1 when unknown.
func (p *Paginated) Total() int {
	last, ok := p.lastPage()
	if !ok {
		return -1
	}
	return last.Total
}

// Cursor returns the cursor of the next page.
func (p *Paginated) Cursor() string {
	last, _ := p.lastPage()
	return last.NextCursor
}

func (p *Paginated) lastPage() (Page, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, _ := p.cache.Get(p.query)
	return set.last()
}
