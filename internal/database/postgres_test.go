package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolOptionsApply(t *testing.T) {
	db, err := sql.Open("pgx", "postgres://pixels@127.0.0.1:1/pixels")
	require.NoError(t, err)
	defer db.Close()

	PoolOptions{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: time.Minute}.apply(db)
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestDefaultPoolOptions(t *testing.T) {
	opts := DefaultPoolOptions()
	assert.Equal(t, 25, opts.MaxOpenConns)
	assert.Equal(t, 25, opts.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, opts.PingTimeout)
}

func TestConnectDBFailsWhenUnreachable(t *testing.T) {
	opts := DefaultPoolOptions()
	opts.PingTimeout = 2 * time.Second

	db, err := ConnectDB(context.Background(), "postgres://pixels@127.0.0.1:1/pixels?connect_timeout=1", opts)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to verify database connection")
}
