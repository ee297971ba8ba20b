package database

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// open returns a store bound to a single connection. The connection is
// established eagerly so a missing directory or unreadable file surfaces
// here as ErrConnection rather than on the first query.
func open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, connectionError(errors.New("empty path"), "failed to open database")
	}

	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, connectionError(err, "failed to open database")
	}

	// One process, one connection, owned by one session at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, connectionError(err, "failed to ping database")
	}

	return db, nil
}
