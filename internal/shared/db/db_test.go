package db

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Defaults(t *testing.T) {
	assert.Equal(t, DefaultPool, Pool{}.withDefaults())

	got := Pool{MaxOpenConns: 3, MaxIdleConns: 8}.withDefaults()
	assert.Equal(t, 3, got.MaxOpenConns)
	assert.Equal(t, 3, got.MaxIdleConns, "idle never exceeds open")
	assert.Equal(t, DefaultPool.ConnMaxIdleTime, got.ConnMaxIdleTime)
}

func TestPool_AppliedToPostgresHandle(t *testing.T) {
	// sqlx.Open não conecta: dá para inspecionar o pool sem banco
	db, err := sqlx.Open(DriverPostgres, "postgres://bid@127.0.0.1:1/none?sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	Pool{MaxOpenConns: 7, MaxIdleConns: 2, ConnMaxIdleTime: time.Minute}.apply(db)
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	db, err := Open(DriverSQLite, "", ":memory:", Pool{})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	require.NoError(t, Migrate(context.Background(), db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, n)

	_, err = Open("mysql", "", "", Pool{})
	assert.Error(t, err)
}
