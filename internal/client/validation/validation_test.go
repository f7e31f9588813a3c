package validation

import (
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name   string
		in     models.LoginInput
		fields []string
	}{
		{name: "valid", in: models.LoginInput{Username: "al", Password: "12345"}},
		{name: "username too short", in: models.LoginInput{Username: "a", Password: "12345"}, fields: []string{"username"}},
		{name: "password too short", in: models.LoginInput{Username: "alice", Password: "1234"}, fields: []string{"password"}},
		{name: "both empty", in: models.LoginInput{}, fields: []string{"username", "password"}},
		{name: "multibyte counts runes", in: models.LoginInput{Username: "ñé", Password: "ääääå"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.in)
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			var verr *Error
			require.ErrorAs(t, err, &verr)

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidateLogin_Messages(t *testing.T) {
	err := ValidateLogin(models.LoginInput{Username: "a", Password: "x"})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username must be at least 2 characters", verr.Message("username"))
	assert.Equal(t, "password must be at least 5 characters", verr.Message("password"))
	assert.Empty(t, verr.Message("email"))
	assert.Contains(t, err.Error(), "username: username must be at least 2 characters")
}

func TestValidateRegister(t *testing.T) {
	base := models.RegisterInput{Email: "a@b.c", FirstName: "A", LastName: "B", Password: "secret"}

	t.Run("new team", func(t *testing.T) {
		in := base
		in.TeamName = "Acme"
		require.NoError(t, ValidateRegister(in))
	})

	t.Run("existing team", func(t *testing.T) {
		in := base
		in.TeamID = "team-1"
		require.NoError(t, ValidateRegister(in))
	})

	t.Run("no team", func(t *testing.T) {
		var verr *Error
		require.ErrorAs(t, ValidateRegister(base), &verr)
		assert.Equal(t, "join an existing team or name a new one", verr.Message("teamId"))
	})

	t.Run("both teams", func(t *testing.T) {
		in := base
		in.TeamID, in.TeamName = "team-1", "Acme"
		var verr *Error
		require.ErrorAs(t, ValidateRegister(in), &verr)
		assert.Equal(t, "join an existing team or create one, not both", verr.Message("teamId"))
	})

	t.Run("missing names", func(t *testing.T) {
		in := base
		in.TeamName = "Acme"
		in.FirstName, in.LastName = "", ""
		var verr *Error
		require.ErrorAs(t, ValidateRegister(in), &verr)
		assert.Equal(t, "first name is required", verr.Message("firstName"))
		assert.Equal(t, "last name is required", verr.Message("lastName"))
	})
}
