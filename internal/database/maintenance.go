package database

import (
	"context"

	"github.com/google/uuid"
)

// Maintain runs SQLite's PRAGMA optimize to refresh planner stats, then
// rebuilds the database file to reclaim unused space. VACUUM cannot run
// inside a transaction, so this uses its own connection instead of a session.
func (m *Manager) Maintain(ctx context.Context, path string) error {
	log := m.log.With().
		Str("session_id", uuid.NewString()).
		Str("store", path).
		Logger()

	db, err := open(ctx, path)
	if err != nil {
		log.Error().Stack().Err(err).Str("class", string(ClassConnection)).Msg("Error connecting to database")
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
			return
		}
		log.Debug().Msg("Database connection closed")
	}()

	if _, err := db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		err = storeError(err, "failed to optimize database")
		log.Error().Stack().Err(err).Str("class", string(ClassStore)).Msg("Database maintenance failed")
		return err
	}

	if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
		err = storeError(err, "failed to vacuum database")
		log.Error().Stack().Err(err).Str("class", string(ClassStore)).Msg("Database maintenance failed")
		return err
	}

	log.Info().Msg("Database optimized and vacuumed")
	return nil
}
