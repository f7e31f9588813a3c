package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertUserQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*password_hash,\s*first_name,\s*last_name,\s*team_id,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id\s*$`
	selectByLogin   = `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*first_name,\s*last_name,\s*team_id,\s*created_at\s+FROM\s+users\s+WHERE\s+lower\(username\)\s*=\s*lower\(\$1\)\s*$`
	selectByID      = `(?s)^SELECT\s+id,\s*username,\s*password_hash,\s*first_name,\s*last_name,\s*team_id,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "username", "password_hash", "first_name", "last_name", "team_id", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func sampleUser() *User {
	return &User{
		ID:           "6f1c2a4e-0b7d-4c1e-9a55-3f0e2d9b8c71",
		UserName:     "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Liddell",
		TeamID:       "team-1",
		PasswordHash: []byte("hash"),
		CreatedAt:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()

	mock.ExpectQuery(insertUserQuery).
		WithArgs(u.ID, u.UserName, u.PasswordHash, u.FirstName, u.LastName, u.TeamID, u.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(u.ID))

	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NotSame(t, u, got)
}

func TestPostgresCreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantIs  error
		wantMsg string
	}{
		{name: "duplicate login", dbErr: &pgconn.PgError{Code: "23505"}, wantIs: common.ErrorAlreadyExists},
		{name: "other constraint", dbErr: &pgconn.PgError{Code: "23502"}, wantMsg: "db error:"},
		{name: "connection", dbErr: errors.New("db down"), wantMsg: "db error: db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(insertUserQuery).WillReturnError(tt.dbErr)

			_, err := repo.Create(context.Background(), sampleUser())
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
				assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
			}
		})
	}
}

func TestPostgresGetUserByLogin_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()

	mock.ExpectQuery(selectByLogin).
		WithArgs("ALICE@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(u.ID, u.UserName, u.PasswordHash, u.FirstName, u.LastName, u.TeamID, u.CreatedAt))

	got, err := repo.GetUserByLogin(context.Background(), "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestPostgresGetUserByLogin_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByLogin).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresGetUserByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	u := sampleUser()

	mock.ExpectQuery(selectByID).
		WithArgs(u.ID).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(u.ID, u.UserName, u.PasswordHash, u.FirstName, u.LastName, u.TeamID, u.CreatedAt))
	mock.ExpectQuery(selectByID).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(selectByID).
		WithArgs("boom").
		WillReturnError(errors.New("db down"))

	got, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = repo.GetUserByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetUserByID(context.Background(), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestPostgresRepository_ImplementsRepository(t *testing.T) {
	var _ Repository = (*PostgresRepository)(nil)
	var _ Repository = (*MemoryRepository)(nil)
}
