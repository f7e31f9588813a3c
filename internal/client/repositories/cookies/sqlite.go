package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, name, path string) (*Cookie, error) {
	var (
		c         = Cookie{Name: name, Path: path}
		expiresAt int64
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT value, expires_at, created_at FROM cookies WHERE name = ? AND path = ?`,
		name, path,
	).Scan(&c.Value, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}
	c.ExpiresAt = time.UnixMilli(expiresAt)
	c.CreatedAt = time.UnixMilli(createdAt)
	return &c, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, c Cookie) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (name, path, value, expires_at, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, path) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, c.Name, c.Path, c.Value, c.ExpiresAt.UnixMilli(), c.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, name, path string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ? AND path = ?`, name, path)
	if err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cookies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired cookies: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Cookie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, path, value, expires_at, created_at FROM cookies ORDER BY name, path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	result := make([]Cookie, 0)
	for rows.Next() {
		var (
			c                    Cookie
			expiresAt, createdAt int64
		)
		if err := rows.Scan(&c.Name, &c.Path, &c.Value, &expiresAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		c.ExpiresAt = time.UnixMilli(expiresAt)
		c.CreatedAt = time.UnixMilli(createdAt)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}
