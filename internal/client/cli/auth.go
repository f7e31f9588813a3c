package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/router"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/validation"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Open navigates to path.
func (a *App) Open(ctx context.Context, path string) error {
	a.router.Navigate(path, router.NavigateOptions{})
	return nil
}

// Back returns to the previous location.
func (a *App) Back(ctx context.Context) error {
	if !a.router.Back() {
		fmt.Fprintln(a.out, "No previous page.")
	}
	return nil
}

// Login opens the login page, keeping its redirect target when already
// there, and submits it. An authenticated session never reaches the form:
// the page redirects away on mount.
func (a *App) Login(ctx context.Context) error {
	if a.router.Location().Path != router.Login {
		a.router.Navigate(router.Login, router.NavigateOptions{})
	}
	a.router.Wait()
	lv, ok := a.router.Current().(*loginView)
	if !ok {
		fmt.Fprintln(a.out, "Already signed in.")
		return nil
	}
	return lv.Submit(ctx)
}

// Register opens the registration page and submits it.
func (a *App) Register(ctx context.Context) error {
	if a.router.Location().Path != router.Register {
		a.router.Navigate(router.Register, router.NavigateOptions{})
	}
	a.router.Wait()
	rv, ok := a.router.Current().(*registerView)
	if !ok {
		fmt.Fprintln(a.out, "Already signed in.")
		return nil
	}
	return rv.Submit(ctx)
}

// Logout signs out and shows the login page. It cannot fail: the local
// credential is dropped even when the backend is unreachable.
func (a *App) Logout(ctx context.Context) error {
	_ = a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	a.router.Navigate(router.Login, router.NavigateOptions{Replace: true})
	return nil
}

// WhoAmI waits for the session to settle and prints who is signed in.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.requestContextFrom(ctx)
	defer cancel()

	e, err := a.session.AwaitCurrentUser(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Session state unknown, try again.")
		return err
	}
	if session.IsAuthenticated(e) {
		fmt.Fprintf(a.out, "Signed in as %s (id %s)\n", e.Value.Username, e.Value.ID)
		return nil
	}
	fmt.Fprintln(a.out, "Not signed in.")
	return nil
}

// reportFormError prints a form failure the way the pages show it: one line
// per invalid field, or a single form-level message.
func (a *App) reportFormError(ctx context.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			fmt.Fprintf(a.out, "  %s: %s\n", f.Field, f.Message)
		}
	case errors.Is(err, client.ErrInvalidCredentials):
		fmt.Fprintln(a.out, "Invalid username or password.")
	case errors.Is(err, client.ErrAlreadyExists):
		fmt.Fprintln(a.out, "An account with this email already exists.")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later.")
	default:
		fmt.Fprintf(a.out, "Request failed: %v\n", err)
	}
	a.logger.Debug(ctx, "form submission failed", "error", err)
}
