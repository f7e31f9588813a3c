package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{name: "one second ago", expiresAt: now.Add(-time.Second), want: true},
		{name: "exactly now", expiresAt: now, want: true},
		{name: "in an hour", expiresAt: now.Add(time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Credential{Token: "t", ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, c.Expired(now))
		})
	}
}
