// Package db opens the ledger backend selected by the settings.
package db

import (
	"context"
	"fmt"

	config "github.com/avvvet/poker-ledger/configs"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store/postgres"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store/sqlite"
	log "github.com/sirupsen/logrus"
)

// Open connects to the configured backend and brings its schema up to date.
// The caller owns the returned ledger and must Close it.
func Open(ctx context.Context, s config.Settings) (store.Ledger, error) {
	switch s.Driver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, s.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Infof("pg connection established successfully")
		return postgres.NewLedger(pool), nil
	case config.DriverSQLite, "":
		ledger, err := sqlite.Open(s.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Infof("sqlite ledger opened at %s", s.SQLitePath)
		return ledger, nil
	default:
		return nil, fmt.Errorf("unknown driver %q", s.Driver)
	}
}
