package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enspm-hub/hub-backend/config"
	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

const (
	dbConnectTimeout = 5 * time.Second
	dbPingTimeout    = 2 * time.Second
)

// OpenDB builds the pgx pool from the database section of the config and
// verifies connectivity before anything gets wired to it.
func OpenDB(ctx context.Context, dbCfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	if dbCfg.Host == "" || dbCfg.Name == "" {
		return nil, fmt.Errorf("database host and name are required")
	}

	poolCfg, err := pgxpool.ParseConfig(postgres.DSN(dbCfg))
	if err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}
	if dbCfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(dbCfg.MaxConns)
	}

	cctx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(cctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, dbPingTimeout)
	defer pcancel()

	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}
