// Package router maps locations to views, keeps a navigation history and
// guards protected views behind the session state.
package router

import (
	"net/url"
	"strings"
)

const (
	Home     = "/"
	Login    = "/auth/login"
	Register = "/auth/register"

	// RedirectParam carries the location a login should return to.
	RedirectParam = "redirectTo"
)

// LoginHref is the login location that returns to redirectTo afterwards.
func LoginHref(redirectTo string) string {
	return Login + "?" + url.Values{RedirectParam: {redirectTo}}.Encode()
}

// Location is a parsed navigation target.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation parses raw into a Location. An empty or unparsable raw
// value yields Home.
func ParseLocation(raw string) Location {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return Location{Path: Home, Query: url.Values{}}
	}
	return Location{Path: u.Path, Query: u.Query()}
}

func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// RedirectTarget returns where a successful login at l should go. Only
// local absolute paths are honored; anything else falls back to Home.
func (l Location) RedirectTarget() string {
	to := l.Query.Get(RedirectParam)
	if !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") {
		return Home
	}
	return to
}
