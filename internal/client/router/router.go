package router

import "sync"

// View is something the router can show. Mount is called when the view
// becomes current and Unmount when it stops being current. Views may call
// back into the Navigator from either; such navigations run after the call
// returns.
type View interface {
	Mount(nav Navigator, loc Location)
	Unmount()
}

// Factory builds a fresh view for each visit.
type Factory func() View

// NavigateOptions controls a navigation. Replace overwrites the current
// history entry instead of pushing a new one.
type NavigateOptions struct {
	Replace bool
}

// Navigator is the part of the router views talk to. Location reports the
// target of the last completed navigation.
type Navigator interface {
	Navigate(to string, opts NavigateOptions)
	Location() Location
}

type navigation struct {
	to      string
	replace bool
	back    bool
}

// Router owns the history and the currently mounted view. Navigations are
// processed one at a time in the order they were requested. Location and
// Current change together, once the new view's Mount has returned.
type Router struct {
	history  *History
	routes   map[string]Factory
	notFound Factory

	mu         sync.Mutex
	idle       *sync.Cond
	current    View
	location   Location
	queue      []navigation
	navigating bool
	closed     bool
}

// New returns a router over history. notFound renders unknown paths.
func New(history *History, notFound Factory) *Router {
	r := &Router{
		history:  history,
		routes:   make(map[string]Factory),
		notFound: notFound,
		location: ParseLocation(history.Current()),
	}
	r.idle = sync.NewCond(&r.mu)
	return r
}

// Handle registers the view for an exact path.
func (r *Router) Handle(path string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[path] = f
}

// Start mounts the view for the history's current entry.
func (r *Router) Start() {
	r.enqueue(navigation{to: r.history.Current(), replace: true})
}

// Navigate requests a navigation to to. When another goroutine is already
// processing navigations the request is queued behind them and Navigate
// returns before it runs; use Wait to observe its outcome.
func (r *Router) Navigate(to string, opts NavigateOptions) {
	r.enqueue(navigation{to: to, replace: opts.Replace})
}

// Wait blocks until every requested navigation, including redirects issued
// by the views they mount, has been processed. It must not be called from a
// view's Mount or Unmount.
func (r *Router) Wait() {
	r.mu.Lock()
	for r.navigating {
		r.idle.Wait()
	}
	r.mu.Unlock()
}

// Back goes to the previous history entry. It reports false when there is
// none.
func (r *Router) Back() bool {
	if !r.history.CanGoBack() {
		return false
	}
	r.enqueue(navigation{back: true})
	return true
}

func (r *Router) Location() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// Current returns the mounted view, or nil before Start.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History exposes the underlying history.
func (r *Router) History() *History {
	return r.history
}

// Close unmounts the current view. Later navigations are ignored.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.queue = nil
	v := r.current
	r.current = nil
	r.mu.Unlock()
	if v != nil {
		v.Unmount()
	}
}

func (r *Router) enqueue(n navigation) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, n)
	if r.navigating {
		r.mu.Unlock()
		return
	}
	r.navigating = true

	for len(r.queue) > 0 && !r.closed {
		n := r.queue[0]
		r.queue = r.queue[1:]

		switch {
		case n.back:
			if !r.history.Back() {
				continue
			}
		case n.replace:
			r.history.Replace(n.to)
		default:
			r.history.Push(n.to)
		}

		loc := ParseLocation(r.history.Current())
		f, ok := r.routes[loc.Path]
		if !ok {
			f = r.notFound
		}
		prev := r.current
		r.current = nil
		r.mu.Unlock()

		if prev != nil {
			prev.Unmount()
		}
		var v View
		if f != nil {
			v = f()
			v.Mount(r, loc)
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			if v != nil {
				v.Unmount()
			}
			r.mu.Lock()
			break
		}
		r.current = v
		r.location = loc
	}

	r.navigating = false
	r.idle.Broadcast()
	r.mu.Unlock()
}
