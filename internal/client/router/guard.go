package router

import (
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/querycache"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// SessionSource is what the guard needs from the session controller.
type SessionSource interface {
	CurrentUser() session.Entry
	Subscribe(l querycache.Listener[*models.User]) (unsubscribe func())
}

// GuardState is the guard's view of the session.
type GuardState int

const (
	Checking GuardState = iota
	Authenticated
	Anonymous
)

func (s GuardState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "checking"
	}
}

// Guard wraps a protected view. It renders a loading indicator while the
// session is undecided, mounts the child once the session holds a user and
// replaces the location with the login page otherwise.
//
// The guard never fetches on its own beyond reading the session once on
// mount; afterwards it only reacts to pushed transitions.
type Guard struct {
	src     SessionSource
	child   Factory
	loading func(Location)

	mu          sync.Mutex
	state       GuardState
	mounted     bool
	nav         Navigator
	loc         Location
	view        View
	unsubscribe func()
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLoading sets the loading indicator shown while the session is undecided.
func WithLoading(fn func(Location)) GuardOption {
	return func(g *Guard) { g.loading = fn }
}

// NewGuard returns a guard around child.
func NewGuard(src SessionSource, child Factory, opts ...GuardOption) *Guard {
	g := &Guard{src: src, child: child, loading: func(Location) {}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Protect adapts NewGuard to a route Factory.
func Protect(src SessionSource, child Factory, opts ...GuardOption) Factory {
	return func() View { return NewGuard(src, child, opts...) }
}

func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) Mount(nav Navigator, loc Location) {
	g.mu.Lock()
	g.nav, g.loc, g.mounted, g.state = nav, loc, true, Checking
	g.mu.Unlock()

	unsubscribe := g.src.Subscribe(g.apply)
	g.mu.Lock()
	if !g.mounted {
		g.mu.Unlock()
		unsubscribe()
		return
	}
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	// Reading may settle the session synchronously and deliver it to apply
	// before returning, so the loading indicator is decided by the guard's
	// state afterwards, not by the returned snapshot.
	e := g.src.CurrentUser()
	if classify(e) != Checking {
		g.apply(e)
		return
	}
	g.mu.Lock()
	show := g.mounted && g.state == Checking
	g.mu.Unlock()
	if show {
		g.loading(loc)
	}
}

// Unmount stops reacting to the session. A fetch already in flight keeps
// running for other subscribers.
func (g *Guard) Unmount() {
	g.mu.Lock()
	g.mounted = false
	unsubscribe, view := g.unsubscribe, g.view
	g.unsubscribe, g.view = nil, nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if view != nil {
		view.Unmount()
	}
}

// Child returns the mounted protected view, if any.
func (g *Guard) Child() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

func classify(e session.Entry) GuardState {
	switch {
	case session.IsAuthenticated(e):
		return Authenticated
	case session.IsAnonymous(e):
		return Anonymous
	default:
		return Checking
	}
}

func (g *Guard) apply(e session.Entry) {
	next := classify(e)

	g.mu.Lock()
	if !g.mounted || next == g.state {
		g.mu.Unlock()
		return
	}
	prev := g.state
	g.state = next
	nav, loc := g.nav, g.loc

	var unmount, mount View
	if prev == Authenticated {
		unmount, g.view = g.view, nil
	}
	if next == Authenticated && g.child != nil {
		mount = g.child()
		g.view = mount
	}
	g.mu.Unlock()

	if unmount != nil {
		unmount.Unmount()
	}
	switch next {
	case Checking:
		g.loading(loc)
	case Authenticated:
		if mount != nil {
			mount.Mount(nav, loc)
		}
	case Anonymous:
		nav.Navigate(LoginHref(loc.String()), NavigateOptions{Replace: true})
	}
}
