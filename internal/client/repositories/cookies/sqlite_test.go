package cookies

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/migrations"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, dbx.Migrate(context.Background(), db, migrations.Migrations, goose.DialectSQLite3))
	return db
}

func cookie(name, value string, expiresAt time.Time) Cookie {
	return Cookie{Name: name, Path: "/", Value: value, ExpiresAt: expiresAt, CreatedAt: expiresAt.Add(-time.Hour)}
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	exp := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())

	require.NoError(t, r.Set(ctx, cookie("access_token", "tok", exp)))

	got, err := r.Get(ctx, "access_token", "/")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", got.Value)
	assert.True(t, exp.Equal(got.ExpiresAt))
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "absent", "/")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGet_PathScoped(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	c := cookie("access_token", "tok", time.Now().Add(time.Hour))
	c.Path = "/api"
	require.NoError(t, r.Set(ctx, c))

	got, err := r.Get(ctx, "access_token", "/")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, r.Set(ctx, cookie("k", "old", exp)))
	require.NoError(t, r.Set(ctx, cookie("k", "new", exp)))

	got, err := r.Get(ctx, "k", "/")
	require.NoError(t, err)
	require.Equal(t, "new", got.Value)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, cookie("x", "v", time.Now().Add(time.Hour))))
	require.NoError(t, r.Delete(ctx, "x", "/"))

	got, err := r.Get(ctx, "x", "/")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, r.Delete(ctx, "x", "/"))
}

func TestDeleteExpired_RemovesOnlyExpired(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Set(ctx, cookie("old", "v", now.Add(-time.Second))))
	require.NoError(t, r.Set(ctx, cookie("fresh", "v", now.Add(time.Hour))))

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fresh", all[0].Name)
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k", "/")
	require.ErrorContains(t, err, "failed to get cookie[k]")

	err = r.Set(ctx, cookie("k", "v", time.Now()))
	require.ErrorContains(t, err, "failed to set cookie[k]")

	err = r.Delete(ctx, "k", "/")
	require.ErrorContains(t, err, "failed to delete cookie[k]")

	_, err = r.DeleteExpired(ctx, time.Now())
	require.ErrorContains(t, err, "failed to delete expired cookies")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list cookies")
}
