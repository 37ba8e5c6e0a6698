// Package listing holds the paginated, searchable list state shared by the
// document and disposition views.
//
// Search only narrows the page already loaded; it never fetches. Changing the
// page always clears the search text.
package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Page is one fetched page of items.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int

	// Notice is an endpoint-specific counter (unread dispositions).
	Notice int
}

// Fetcher loads one page for the signed-in user.
type Fetcher[T any] func(ctx context.Context, page int) (Page[T], error)

// Fields returns the searchable text of an item.
type Fields[T any] func(item T) []string

// ErrStale is returned by Apply when a newer request superseded this one.
var ErrStale = errors.New("stale list result")

// Request identifies one fetch. Only the latest request's result is applied.
type Request struct {
	Seq  uint64
	Page int
}

type Controller[T any] struct {
	fetch  Fetcher[T]
	fields Fields[T]

	mu      sync.Mutex
	items   []T
	page    int
	total   int
	search  string
	notice  int
	loaded  bool
	loading bool
	seq     uint64
}

func New[T any](fetch Fetcher[T], fields Fields[T]) *Controller[T] {
	return &Controller[T]{fetch: fetch, fields: fields, page: 1, total: 1}
}

// Reload starts a fetch of the current page.
func (c *Controller[T]) Reload() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

// SetPage moves to page p, clears the search text and starts a fetch.
func (c *Controller[T]) SetPage(p int) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p < 1 {
		p = 1
	}
	c.page = p
	c.search = ""
	return c.beginLocked()
}

func (c *Controller[T]) beginLocked() Request {
	c.seq++
	c.loading = true
	return Request{Seq: c.seq, Page: c.page}
}

// Fetch runs the request without touching controller state, so it can run off
// the view loop.
func (c *Controller[T]) Fetch(ctx context.Context, req Request) (Page[T], error) {
	return c.fetch(ctx, req.Page)
}

// Apply stores the outcome of req. A failed fetch keeps the previous items
// and returns err. Results of superseded requests are dropped with ErrStale.
func (c *Controller[T]) Apply(req Request, p Page[T], err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req.Seq != c.seq {
		return ErrStale
	}
	c.loading = false
	if err != nil {
		return err
	}
	c.items = p.Items
	if c.items == nil {
		c.items = []T{}
	}
	c.total = p.TotalPages
	if c.total < 1 {
		c.total = 1
	}
	c.notice = p.Notice
	c.loaded = true
	return nil
}

// Load fetches the current page and applies it.
func (c *Controller[T]) Load(ctx context.Context) error {
	req := c.Reload()
	p, err := c.Fetch(ctx, req)
	return c.Apply(req, p, err)
}

// GoTo changes page and loads it.
func (c *Controller[T]) GoTo(ctx context.Context, page int) error {
	req := c.SetPage(page)
	p, err := c.Fetch(ctx, req)
	return c.Apply(req, p, err)
}

// SetSearch changes the filter text. It never triggers a fetch.
func (c *Controller[T]) SetSearch(s string) {
	c.mu.Lock()
	c.search = s
	c.mu.Unlock()
}

func (c *Controller[T]) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

func (c *Controller[T]) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller[T]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Controller[T]) Notice() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Items returns the whole loaded page, ignoring search.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Visible returns the loaded items that match the search text.
func (c *Controller[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(c.search))
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if needle == "" || c.matches(it, needle) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Controller[T]) matches(it T, needle string) bool {
	if c.fields == nil {
		return false
	}
	for _, f := range c.fields(it) {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// PageLinks returns the pagination control for the current state.
func (c *Controller[T]) PageLinks() []PageLink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Links(c.page, c.total)
}
