package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// DefaultStaleTime is how long a settled entry is served without refetching.
const DefaultStaleTime = 60 * time.Second

var (
	// ErrClosed is returned by Await once the cache has been torn down.
	ErrClosed = errors.New("query cache closed")
	// ErrNoFetcher is returned by Await for a key nobody ever supplied a fetcher for.
	ErrNoFetcher = errors.New("no fetcher for key")
)

// Fetcher produces the value for a key.
type Fetcher[V any] func(ctx context.Context) (V, error)

// Listener receives every transition of the key it subscribed to.
type Listener[V any] func(Entry[V])

// Clock is an injectable time source.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Options configures a Cache. Zero values select defaults.
type Options struct {
	StaleTime time.Duration
	Clock     Clock
	Logger    logging.Logger
}

// InvalidateOptions controls Invalidate. Clear drops the cached value
// immediately instead of serving it while the replacement is fetched.
type InvalidateOptions struct {
	Clear bool
}

type subscription[V any] struct {
	id     uint64
	fn     Listener[V]
	active atomic.Bool
}

type notification[V any] struct {
	entry Entry[V]
	subs  []*subscription[V]
}

type state[V any] struct {
	entry       Entry[V]
	gen         uint64
	invalidated bool
	fetch       Fetcher[V]
	done        chan struct{}
	subs        []*subscription[V]
}

// Cache holds entries of one value type. The zero value is not usable;
// construct with New.
type Cache[V any] struct {
	staleTime time.Duration
	clock     Clock
	logger    logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu       sync.Mutex
	entries  map[string]*state[V]
	nextSub  uint64
	queue    []notification[V]
	draining bool
	closed   bool
}

// New returns an empty cache.
func New[V any](opts Options) *Cache[V] {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache[V]{
		staleTime: opts.StaleTime,
		clock:     opts.Clock,
		logger:    opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[string]*state[V]),
	}
}

// Read returns the entry for key. A Pending entry, or a settled entry that
// is still fresh, is returned as is. Otherwise a fetch is started in the
// background and the in-flight entry is returned.
func (c *Cache[V]) Read(key string, fetch Fetcher[V]) Entry[V] {
	e, _, _ := c.read(key, fetch)
	c.drain()
	return e
}

// Await reads key and blocks until its entry settles or ctx is done.
// A Rejected entry is returned without error; the error return is reserved
// for ctx expiry and teardown.
func (c *Cache[V]) Await(ctx context.Context, key string, fetch Fetcher[V]) (Entry[V], error) {
	for {
		e, done, err := c.read(key, fetch)
		c.drain()
		if err != nil {
			return e, err
		}
		if e.Settled() {
			return e, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return e, ctx.Err()
		}
	}
}

// Peek returns the entry for key without starting a fetch.
func (c *Cache[V]) Peek(key string) Entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.entries[key]; ok {
		return st.entry
	}
	return Entry[V]{Key: key}
}

// Invalidate marks key stale. Fetches already in flight for key are
// discarded when they complete. When the key has subscribers and a known
// fetcher the replacement fetch starts right away; otherwise the next Read
// starts it. Invalidate never waits for the network.
func (c *Cache[V]) Invalidate(key string, opts InvalidateOptions) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	st := c.state(key)
	st.gen++
	st.invalidated = true
	c.group.Forget(key)
	c.releaseWaiters(st)

	switch {
	case opts.Clear, st.entry.Status == Pending, st.entry.Status == Rejected:
		if st.entry.Status != Idle && st.entry.Status != Stale {
			st.entry = Entry[V]{Key: key, Status: Stale}
			c.enqueue(st)
		}
	case st.entry.Refreshing:
		st.entry.Refreshing = false
		c.enqueue(st)
	}

	if len(st.subs) > 0 && st.fetch != nil {
		c.startFetch(key, st)
	}
	c.mu.Unlock()
	c.logger.Debug(context.Background(), "cache entry invalidated", "key", key, "clear", opts.Clear)
	c.drain()
}

// Subscribe registers l for every future transition of key. The returned
// function unsubscribes; calling it more than once is harmless.
func (c *Cache[V]) Subscribe(key string, l Listener[V]) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	c.nextSub++
	sub := &subscription[V]{id: c.nextSub, fn: l}
	sub.active.Store(true)
	st := c.state(key)
	st.subs = append(st.subs, sub)

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		st, ok := c.entries[key]
		if !ok {
			return
		}
		for i, s := range st.subs {
			if s == sub {
				st.subs = append(st.subs[:i:i], st.subs[i+1:]...)
				break
			}
		}
	}
}

// Close tears the cache down: in-flight fetches are cancelled, waiters are
// released and all entries and subscribers are dropped.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	for _, st := range c.entries {
		c.releaseWaiters(st)
		for _, s := range st.subs {
			s.active.Store(false)
		}
	}
	c.entries = make(map[string]*state[V])
	c.queue = nil
}

func (c *Cache[V]) read(key string, fetch Fetcher[V]) (Entry[V], chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Entry[V]{Key: key}, nil, ErrClosed
	}
	st := c.state(key)
	if fetch != nil {
		st.fetch = fetch
	}

	switch st.entry.Status {
	case Pending:
		return st.entry, st.done, nil
	case Resolved, Rejected:
		if st.entry.Refreshing || !c.isStale(st) {
			return st.entry, st.done, nil
		}
	}
	if st.fetch == nil {
		return st.entry, nil, ErrNoFetcher
	}
	c.startFetch(key, st)
	return st.entry, st.done, nil
}

func (c *Cache[V]) state(key string) *state[V] {
	st, ok := c.entries[key]
	if !ok {
		st = &state[V]{entry: Entry[V]{Key: key}}
		c.entries[key] = st
	}
	return st
}

func (c *Cache[V]) isStale(st *state[V]) bool {
	if st.invalidated {
		return true
	}
	return !c.clock.Now().Before(st.entry.FetchedAt.Add(c.staleTime))
}

// startFetch must be called with c.mu held. Starts for the same key share
// one flight in c.group; Invalidate forgets the flight so that the next
// start runs the fetcher again. Only the caller that started the flight
// settles it.
func (c *Cache[V]) startFetch(key string, st *state[V]) {
	switch {
	case st.entry.Status == Pending, st.entry.Refreshing:
	case st.entry.Status == Resolved:
		st.entry.Refreshing = true
		c.enqueue(st)
	default:
		st.entry = Entry[V]{Key: key, Status: Pending}
		c.enqueue(st)
	}
	st.invalidated = false
	if st.done == nil {
		st.done = make(chan struct{})
	}

	gen, fetch := st.gen, st.fetch
	led := false
	ch := c.group.DoChan(key, func() (any, error) {
		led = true
		return c.safeFetch(fetch)
	})
	go func() {
		res := <-ch
		if led {
			c.settle(key, gen, res)
		}
	}()
}

func (c *Cache[V]) safeFetch(fetch Fetcher[V]) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fetch(c.ctx)
}

func (c *Cache[V]) settle(key string, gen uint64, res singleflight.Result) {
	c.mu.Lock()
	st, ok := c.entries[key]
	if c.closed || !ok || st.gen != gen {
		c.mu.Unlock()
		c.logger.Debug(context.Background(), "discarding superseded fetch", "key", key)
		return
	}

	now := c.clock.Now()
	if res.Err != nil {
		st.entry = Entry[V]{Key: key, Status: Rejected, Err: res.Err, FetchedAt: now}
	} else {
		v, _ := res.Val.(V)
		st.entry = Entry[V]{Key: key, Status: Resolved, Value: v, FetchedAt: now}
	}
	c.releaseWaiters(st)
	c.enqueue(st)
	status := st.entry.Status
	c.mu.Unlock()

	c.logger.Debug(context.Background(), "cache entry settled", "key", key, "status", status.String())
	c.drain()
}

// releaseWaiters must be called with c.mu held.
func (c *Cache[V]) releaseWaiters(st *state[V]) {
	if st.done != nil {
		close(st.done)
		st.done = nil
	}
}

// enqueue must be called with c.mu held. The subscriber list is captured
// now so that a listener added later does not see older transitions.
func (c *Cache[V]) enqueue(st *state[V]) {
	if len(st.subs) == 0 {
		return
	}
	subs := make([]*subscription[V], len(st.subs))
	copy(subs, st.subs)
	c.queue = append(c.queue, notification[V]{entry: st.entry, subs: subs})
}

// drain delivers queued notifications. Only one goroutine drains at a time;
// others leave their notifications for it, which keeps delivery ordered and
// lets listeners call back into the cache.
func (c *Cache[V]) drain() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.queue) > 0 {
		n := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		for _, s := range n.subs {
			if s.active.Load() {
				c.deliver(s, n.entry)
			}
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

func (c *Cache[V]) deliver(s *subscription[V], e Entry[V]) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(context.Background(), "cache listener panicked", "key", e.Key, "panic", r)
		}
	}()
	s.fn(e)
}
