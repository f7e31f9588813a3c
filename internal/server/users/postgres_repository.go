package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// PostgresRepository stores users in PostgreSQL. Logins are matched
// case-insensitively, backed by a unique index on lower(username).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	query :=
		`INSERT INTO users (id, username, password_hash, first_name, last_name, team_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	out := *user
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.PasswordHash, user.FirstName, user.LastName, user.TeamID, user.CreatedAt).Scan(&out.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &out, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	query :=
		`SELECT id, username, password_hash, first_name, last_name, team_id, created_at FROM users
		 WHERE lower(username) = lower($1)
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query :=
		`SELECT id, username, password_hash, first_name, last_name, team_id, created_at FROM users
		 WHERE id = $1
		 `

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(&user.ID, &user.UserName, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.TeamID, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
