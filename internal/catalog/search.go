package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/freshmart/storefront/internal/storeapi"
)

// DefaultDebounce is the quiet period after the last update before a fetch.
const DefaultDebounce = 300 * time.Millisecond

// Fetcher loads products for a query.
type Fetcher func(ctx context.Context, query string) ([]storeapi.Product, error)

// Result is the outcome of one debounced fetch.
type Result struct {
	Seq      uint64
	Query    string
	Products []storeapi.Product
	Err      error
}

// Searcher debounces query updates into fetches. Each update cancels the
// pending timer and the in-flight fetch; a result is published only while
// its sequence number is still the latest, so a slow stale response can
// never replace a newer one. Results holds at most the latest result.
type Searcher struct {
	base  context.Context
	fetch Fetcher
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	results chan Result
}

// NewSearcher returns a Searcher whose fetches derive from ctx.
func NewSearcher(ctx context.Context, fetch Fetcher, delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Searcher{
		base:    ctx,
		fetch:   fetch,
		delay:   delay,
		results: make(chan Result, 1),
	}
}

// Results delivers published results.
func (s *Searcher) Results() <-chan Result {
	return s.results
}

// Update schedules a fetch for query and returns its sequence number.
func (s *Searcher) Update(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.seq
	}
	s.stopLocked()
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, seq, query)
	})
	return seq
}

// Latest returns the sequence number of the most recent update.
func (s *Searcher) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Close cancels pending work and closes Results.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	close(s.results)
}

func (s *Searcher) run(ctx context.Context, seq uint64, query string) {
	products, err := s.fetch(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq || ctx.Err() != nil {
		return
	}
	res := Result{Seq: seq, Query: query, Products: products, Err: err}
	select {
	case <-s.results:
	default:
	}
	s.results <- res
}

func (s *Searcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
