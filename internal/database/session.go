package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// errAbandoned is the rollback cause when the unit of work neither returned
// nor panicked.
var errAbandoned = errors.New("unit of work exited without returning")

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// session owns one connection and one transaction for its whole lifetime.
type session struct {
	db       *sqlx.DB
	tx       *sqlx.Tx
	log      zerolog.Logger
	released bool
}

// WithSession runs fn inside a single transaction on a fresh connection to the
// store at path. Changes made through the handle are committed when fn
// returns nil and rolled back when fn returns an error or panics. The
// connection is closed before WithSession returns on every path.
func (m *Manager) WithSession(ctx context.Context, path string, fn func(*Handle) error) error {
	_, err := WithSessionResult(ctx, m, path, func(h *Handle) (struct{}, error) {
		return struct{}{}, fn(h)
	})
	return err
}

// WithSessionResult is WithSession for units of work that produce a value.
// The value is returned only when the session commits.
func WithSessionResult[T any](ctx context.Context, m *Manager, path string, fn func(*Handle) (T, error)) (T, error) {
	var zero T

	s, err := m.connect(ctx, path)
	if err != nil {
		return zero, err
	}
	defer s.release()

	h := &Handle{tx: s.tx, log: s.log}
	finalized := false
	defer func() {
		if finalized {
			return
		}
		// fn panicked or its goroutine exited (runtime.Goexit).
		h.close()
		if p := recover(); p != nil {
			s.rollback(fmt.Errorf("panic in unit of work: %v", p))
			panic(p)
		}
		s.rollback(errAbandoned)
	}()

	result, err := fn(h)
	h.close()
	finalized = true
	if err != nil {
		s.rollback(err)
		return zero, err
	}

	if err := s.commit(); err != nil {
		return zero, err
	}
	return result, nil
}

func (m *Manager) connect(ctx context.Context, path string) (*session, error) {
	log := m.log.With().
		Str("session_id", uuid.NewString()).
		Str("store", path).
		Logger()

	db, err := open(ctx, path)
	if err != nil {
		log.Error().Stack().Err(err).Str("class", string(ClassConnection)).Msg("Error connecting to database")
		return nil, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		_ = db.Close()
		err = connectionError(err, "failed to begin transaction")
		log.Error().Stack().Err(err).Str("class", string(ClassConnection)).Msg("Error connecting to database")
		return nil, err
	}

	log.Debug().Msg("Database connection established")

	return &session{db: db, tx: tx, log: log}, nil
}

func (s *session) commit() error {
	if err := s.tx.Commit(); err != nil {
		err = storeError(err, "failed to commit transaction")
		s.log.Error().Stack().Err(err).Str("class", string(ClassStore)).Msg("Database commit failed")
		return err
	}
	s.log.Debug().Msg("Database transaction committed")
	return nil
}

// rollback never masks cause; its own failure is only logged. Causes without
// a stack (caller errors) get one here for the log record only.
func (s *session) rollback(cause error) {
	logged := cause
	var st stackTracer
	if !errors.As(cause, &st) {
		logged = pkgerrors.WithStack(cause)
	}
	s.log.Error().Stack().Err(logged).Str("class", string(Classify(cause))).Msg("Database rollback commenced")
	if err := s.tx.Rollback(); err != nil {
		s.log.Error().Err(err).Msg("Failed to rollback transaction")
		return
	}
	s.log.Debug().Msg("Database transaction rolled back")
}

func (s *session) release() {
	if s.released {
		return
	}
	s.released = true

	if err := s.db.Close(); err != nil {
		s.log.Error().Err(err).Msg("Failed to close database connection")
		return
	}
	s.log.Debug().Msg("Database connection closed")
}
