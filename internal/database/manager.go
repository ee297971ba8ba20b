package database

import (
	"github.com/rs/zerolog"
)

// Manager is the approved entrypoint for database access across the app.
// It exposes sessions only; callers never see the underlying connection.
type Manager struct {
	log zerolog.Logger
}

// NewManager creates a session manager that reports lifecycle events and
// operation audit records to logger.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{log: logger.With().Str("component", "database").Logger()}
}
