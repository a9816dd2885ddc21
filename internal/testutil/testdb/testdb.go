//go:build integration

// Package testdb starts a disposable PostgreSQL container with the portal
// schema applied, for integration tests.
package testdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/yigit/achievement-portal/internal/app/migrations"
	"github.com/yigit/achievement-portal/internal/db"
)

// Handle owns the container and the pool connected to it
type Handle struct {
	DB   *db.PostgresDB
	stop func(context.Context) error
}

// Close releases the pool and terminates the container
func (h *Handle) Close() {
	if h.DB != nil {
		h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
}

// Start runs a postgres container and applies every migration
func Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("achievements"),
		postgres.WithUsername("portal"),
		postgres.WithPassword("portal"),
	)
	if err != nil {
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		_ = pg.Terminate(context.Background())
		return nil, err
	}
	if err := waitReady(ctx, pool); err != nil {
		pool.Close()
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	m, err := migrations.NewMigrator(pool)
	if err == nil {
		err = m.Up(ctx)
		_ = m.Close()
	}
	if err != nil {
		pool.Close()
		_ = pg.Terminate(context.Background())
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Handle{DB: db.NewFromPool(pool), stop: pg.Terminate}, nil
}

func waitReady(ctx context.Context, pool *pgxpool.Pool) error {
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New("db not ready")
}
