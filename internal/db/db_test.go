package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	d, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func tableExists(t *testing.T, d *DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=$1`, name).Scan(&n))
	return n == 1
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	require.Error(t, err)
}

func TestMigrate_CreatesSchemaAndIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, d))
	require.NoError(t, Migrate(ctx, d), "second run must be a no-op")

	for _, table := range []string{"users", "categories", "category_items"} {
		require.True(t, tableExists(t, d, table), "missing table %s", table)
	}
}

func TestMigrate_UserEmailIsUnique(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, d))

	_, err := d.ExecContext(ctx, `INSERT INTO users (name, email) VALUES ('a', 'a@example.com')`)
	require.NoError(t, err)
	_, err = d.ExecContext(ctx, `INSERT INTO users (name, email) VALUES ('b', 'a@example.com')`)
	require.Error(t, err)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, d))

	err := WithTx(ctx, d.DB, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (name, email) VALUES ('ok', 'ok@example.com')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, d))

	boom := errors.New("boom")
	err := WithTx(ctx, d.DB, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO users (name, email) VALUES ('x', 'x@example.com')`)
		require.NoError(t, e)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	require.Equal(t, 0, n)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, d))

	defer func() {
		require.NotNil(t, recover(), "panic must propagate")
		var n int
		require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
		require.Equal(t, 0, n)
	}()

	_ = WithTx(ctx, d.DB, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO users (name, email) VALUES ('p', 'p@example.com')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, d.Close())

	err := WithTx(context.Background(), d.DB, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}
