package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/router"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// formView holds what the login and register pages share: while mounted,
// a session that resolves to a user sends the page to its redirect target.
type formView struct {
	app    *App
	target func(router.Location) string

	mu          sync.Mutex
	nav         router.Navigator
	loc         router.Location
	mounted     bool
	redirected  bool
	unsubscribe func()
}

func (v *formView) mount(nav router.Navigator, loc router.Location) {
	v.mu.Lock()
	v.nav, v.loc, v.mounted = nav, loc, true
	v.mu.Unlock()

	unsubscribe := v.app.session.Subscribe(v.onSession)
	v.mu.Lock()
	v.unsubscribe = unsubscribe
	v.mu.Unlock()

	v.onSession(v.app.session.CurrentUser())
}

func (v *formView) Unmount() {
	v.mu.Lock()
	v.mounted = false
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (v *formView) onSession(e session.Entry) {
	if session.IsAuthenticated(e) {
		v.redirect()
	}
}

// redirect leaves the page once, however many times it is asked to.
func (v *formView) redirect() {
	v.mu.Lock()
	if !v.mounted || v.redirected {
		v.mu.Unlock()
		return
	}
	v.redirected = true
	nav, to := v.nav, v.target(v.loc)
	v.mu.Unlock()

	nav.Navigate(to, router.NavigateOptions{Replace: true})
}

// loginView is the login page. It keeps the typed username across failed
// attempts.
type loginView struct {
	formView
	username string
}

func newLoginView(a *App) *loginView {
	v := &loginView{}
	v.app = a
	v.target = router.Location.RedirectTarget
	return v
}

func (v *loginView) Mount(nav router.Navigator, loc router.Location) {
	fmt.Fprintln(v.app.out, "== Sign in ==")
	fmt.Fprintln(v.app.out, "Type 'login' to sign in or 'open /auth/register' to create an account.")
	v.mount(nav, loc)
}

// Submit prompts for credentials and signs in. On success the page
// navigates to its redirect target.
func (v *loginView) Submit(ctx context.Context) error {
	prompt := "Username"
	if v.username != "" {
		prompt = fmt.Sprintf("Username [%s]", v.username)
	}
	username, err := getSimpleText(v.app.reader, prompt, v.app.out)
	if err != nil {
		return err
	}
	if username == "" {
		username = v.username
	}
	v.username = username

	password, err := getPassword(v.app.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := v.app.session.Login(ctx, models.LoginInput{Username: username, Password: string(password)})
	if err != nil {
		v.app.reportFormError(ctx, err)
		return err
	}

	fmt.Fprintf(v.app.out, "Signed in as %s\n", u.Username)
	v.redirect()
	return nil
}

// registerView is the registration page.
type registerView struct {
	formView
}

func newRegisterView(a *App) *registerView {
	v := &registerView{}
	v.app = a
	v.target = func(router.Location) string { return router.Home }
	return v
}

func (v *registerView) Mount(nav router.Navigator, loc router.Location) {
	fmt.Fprintln(v.app.out, "== Create an account ==")
	fmt.Fprintln(v.app.out, "Type 'register' to fill in the form.")
	v.mount(nav, loc)
}

// Submit prompts for the registration form and creates the account. Joining
// an existing team and creating a new one are mutually exclusive.
func (v *registerView) Submit(ctx context.Context) error {
	var in models.RegisterInput
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Email", &in.Email},
		{"First name", &in.FirstName},
		{"Last name", &in.LastName},
		{"Team ID to join (leave empty to create a new team)", &in.TeamID},
	}
	for _, f := range fields {
		s, err := getSimpleText(v.app.reader, f.prompt, v.app.out)
		if err != nil {
			return err
		}
		*f.dst = s
	}
	if in.TeamID == "" {
		s, err := getSimpleText(v.app.reader, "New team name", v.app.out)
		if err != nil {
			return err
		}
		in.TeamName = s
	}

	password, err := getPassword(v.app.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	in.Password = string(password)

	u, err := v.app.session.Register(ctx, in)
	if err != nil {
		v.app.reportFormError(ctx, err)
		return err
	}

	fmt.Fprintf(v.app.out, "Account created, signed in as %s\n", u.Username)
	v.redirect()
	return nil
}

// homeView is the protected start page. It only ever mounts behind the
// route guard, so a user is present.
type homeView struct {
	app *App
}

func (v *homeView) Mount(nav router.Navigator, loc router.Location) {
	e := v.app.session.CurrentUser()
	if e.Value == nil {
		return
	}
	u := e.Value

	fmt.Fprintln(v.app.out, "== Home ==")
	fmt.Fprintf(v.app.out, "Signed in as %s (member since %s)\n", u.Username, formatDate(u.CreatedAt))

	ctx, cancel := v.app.requestContext()
	defer cancel()
	msg, err := v.app.session.Greeting(ctx, u.Username)
	if err != nil {
		v.app.logger.Warn(ctx, "greeting failed", "error", err)
		fmt.Fprintln(v.app.out, "Could not load greeting.")
	} else {
		fmt.Fprintln(v.app.out, msg)
	}
	fmt.Fprintln(v.app.out, "Type 'logout' to sign out.")
}

func (v *homeView) Unmount() {}

type notFoundView struct {
	app *App
}

func (v *notFoundView) Mount(nav router.Navigator, loc router.Location) {
	fmt.Fprintf(v.app.out, "Page not found: %s\n", loc.Path)
	fmt.Fprintln(v.app.out, "Type 'open /' to go home or 'back' to return.")
}

func (v *notFoundView) Unmount() {}
