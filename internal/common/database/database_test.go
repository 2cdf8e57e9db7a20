package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dr-Musa/najah-realestate/internal/common/config"
)

func TestRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestPostgresPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	client := &PostgresClient{DB: db}

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(assert.AnError)
	assert.ErrorIs(t, client.Ping(context.Background()), assert.AnError)

	mock.ExpectClose()
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresDoesNotConnect(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{Host: "127.0.0.1", Port: 1, Database: "x", User: "u", SSLMode: "disable", MaxConnections: 2, MaxIdle: 1})
	require.NoError(t, err)
	assert.Equal(t, "postgres", client.Name())
	assert.NoError(t, client.Close())
}

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Name() string                 { return f.name }
func (f fakeChecker) Ping(_ context.Context) error { return f.err }

func TestCheckAll(t *testing.T) {
	failures := CheckAll(context.Background(), time.Second,
		fakeChecker{name: "ok"},
		fakeChecker{name: "down", err: assert.AnError},
		nil,
	)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures["down"], assert.AnError)
}
