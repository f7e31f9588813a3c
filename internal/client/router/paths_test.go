package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginHref(t *testing.T) {
	assert.Equal(t, "/auth/login?redirectTo=%2F", LoginHref("/"))
	assert.Equal(t, "/auth/login?redirectTo=%2Fa%3Fb%3Dc", LoginHref("/a?b=c"))
}

func TestParseLocation(t *testing.T) {
	loc := ParseLocation("/auth/login?redirectTo=%2Fsettings")
	assert.Equal(t, Login, loc.Path)
	assert.Equal(t, "/settings", loc.Query.Get(RedirectParam))
	assert.Equal(t, "/auth/login?redirectTo=%2Fsettings", loc.String())

	assert.Equal(t, Home, ParseLocation("").Path)
	assert.Equal(t, "/x", ParseLocation("/x").String())
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "/auth/login?redirectTo=%2F", want: "/"},
		{raw: "/auth/login?redirectTo=%2Fprofile%3Ftab%3D1", want: "/profile?tab=1"},
		{raw: "/auth/login", want: Home},
		{raw: "/auth/login?redirectTo=https%3A%2F%2Fevil.example", want: Home},
		{raw: "/auth/login?redirectTo=%2F%2Fevil.example", want: Home},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.raw).RedirectTarget())
		})
	}
}
