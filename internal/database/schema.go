package database

import (
	"context"
)

const inventorySchema = `
	CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		price REAL NOT NULL DEFAULT 0.0
	)
`

// EnsureSchema creates the inventory table if it does not exist yet.
func (h *Handle) EnsureSchema(ctx context.Context) error {
	_, err := audit(h, "ensure_schema", nil, func() (struct{}, error) {
		if _, err := h.exec(ctx, inventorySchema); err != nil {
			return struct{}{}, storeError(err, "failed to create inventory table")
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	h.log.Info().Str("table", "inventory").Msg("Table checked/created successfully")
	return nil
}
