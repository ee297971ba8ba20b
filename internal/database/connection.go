package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Handle is the operation handle for one session. It is valid only inside the
// unit of work it was passed to.
type Handle struct {
	tx     *sqlx.Tx
	log    zerolog.Logger
	closed bool
}

func (h *Handle) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if h.closed {
		return nil, ErrSessionClosed
	}
	return h.tx.ExecContext(ctx, query, args...)
}

func (h *Handle) get(ctx context.Context, dest any, query string, args ...any) error {
	if h.closed {
		return ErrSessionClosed
	}
	return h.tx.GetContext(ctx, dest, query, args...)
}

func (h *Handle) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	if h.closed {
		return ErrSessionClosed
	}
	return h.tx.SelectContext(ctx, dest, query, args...)
}

// close detaches the handle from its transaction.
func (h *Handle) close() {
	h.closed = true
}
