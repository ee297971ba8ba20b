package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Item is one row of the inventory table.
type Item struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Quantity int64   `db:"quantity" json:"quantity"`
	Price    float64 `db:"price" json:"price"`
}

type insertResult struct {
	ID int64 `json:"id"`
	OK bool  `json:"ok"`
}

// InsertItem adds a new item and returns its store-assigned id. A write
// rejected by a constraint returns ok=false with a nil error and leaves the
// session usable; every other store failure is returned.
func (h *Handle) InsertItem(ctx context.Context, name string, quantity int64, price float64) (int64, bool, error) {
	args := map[string]any{"name": name, "quantity": quantity, "price": price}

	res, err := audit(h, "insert_item", args, func() (insertResult, error) {
		id, err := h.insertItem(ctx, name, quantity, price)
		if err != nil {
			if isConstraintViolation(err) {
				h.log.Error().Stack().Err(err).
					Str("op", "insert_item").
					Str("class", string(ClassConstraint)).
					Str("name", name).
					Msg("Error adding item")
				return insertResult{}, nil
			}
			return insertResult{}, err
		}
		return insertResult{ID: id, OK: true}, nil
	})
	if err != nil {
		return 0, false, err
	}

	if res.OK {
		h.log.Info().Str("name", name).Int64("item_id", res.ID).Msg("Item added successfully")
	}
	return res.ID, res.OK, nil
}

func (h *Handle) insertItem(ctx context.Context, name string, quantity int64, price float64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, constraintError("item name must not be empty")
	}

	result, err := h.exec(ctx, `
		INSERT INTO inventory (name, quantity, price)
		VALUES (?, ?, ?)
	`, name, quantity, price)
	if err != nil {
		return 0, storeError(err, "failed to add item")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storeError(err, "failed to get item id")
	}
	return id, nil
}

// ListItems returns every item ordered by ascending id. The slice is empty,
// not nil, when the table has no rows.
func (h *Handle) ListItems(ctx context.Context) ([]Item, error) {
	return audit(h, "list_items", nil, func() ([]Item, error) {
		items := []Item{}
		if err := h.selectAll(ctx, &items, `
			SELECT id, name, quantity, price FROM inventory ORDER BY id
		`); err != nil {
			return nil, storeError(err, "failed to list items")
		}
		return items, nil
	})
}

// GetItem returns the item with the given id, or nil when no row matches.
func (h *Handle) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, err := audit(h, "get_item", map[string]any{"item_id": id}, func() (*Item, error) {
		item := &Item{}
		err := h.get(ctx, item, `
			SELECT id, name, quantity, price FROM inventory WHERE id = ?
		`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, storeError(err, fmt.Sprintf("failed to get item %d", id))
		}
		return item, nil
	})
	if err != nil {
		return nil, err
	}

	if item == nil {
		h.log.Warn().Int64("item_id", id).Msg("No item found")
	}
	return item, nil
}

// UpdateItem sets the quantity and price of an existing item. It reports
// false when no item has the given id.
func (h *Handle) UpdateItem(ctx context.Context, id, quantity int64, price float64) (bool, error) {
	args := map[string]any{"item_id": id, "quantity": quantity, "price": price}

	updated, err := audit(h, "update_item", args, func() (bool, error) {
		result, err := h.exec(ctx, `
			UPDATE inventory SET quantity = ?, price = ? WHERE id = ?
		`, quantity, price, id)
		if err != nil {
			return false, storeError(err, fmt.Sprintf("failed to update item %d", id))
		}
		return rowsChanged(result)
	})
	if err != nil {
		return false, err
	}

	if updated {
		h.log.Info().Int64("item_id", id).Msg("Item updated successfully")
	} else {
		h.log.Warn().Int64("item_id", id).Msg("No item found, nothing updated")
	}
	return updated, nil
}

// DeleteItem removes an item. It reports false when no item has the given id.
func (h *Handle) DeleteItem(ctx context.Context, id int64) (bool, error) {
	deleted, err := audit(h, "delete_item", map[string]any{"item_id": id}, func() (bool, error) {
		result, err := h.exec(ctx, "DELETE FROM inventory WHERE id = ?", id)
		if err != nil {
			return false, storeError(err, fmt.Sprintf("failed to delete item %d", id))
		}
		return rowsChanged(result)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		h.log.Info().Int64("item_id", id).Msg("Item deleted successfully")
	} else {
		h.log.Warn().Int64("item_id", id).Msg("No item found, nothing deleted")
	}
	return deleted, nil
}

// CountItems returns the number of rows in the inventory table.
func (h *Handle) CountItems(ctx context.Context) (int64, error) {
	return audit(h, "count_items", nil, func() (int64, error) {
		var count int64
		if err := h.get(ctx, &count, "SELECT COUNT(*) FROM inventory"); err != nil {
			return 0, storeError(err, "failed to count items")
		}
		return count, nil
	})
}

func rowsChanged(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeError(err, "failed to read affected rows")
	}
	return n > 0, nil
}
