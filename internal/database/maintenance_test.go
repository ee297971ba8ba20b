package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintain(t *testing.T) {
	m, path, buf := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.WithSession(ctx, path, func(h *Handle) error {
		_, _, err := h.InsertItem(ctx, "Kept", 1, 1.0)
		return err
	}))

	require.NoError(t, m.Maintain(ctx, path))
	assert.Equal(t, 1, countMessages(buf, "Database optimized and vacuumed"))
	assert.Len(t, listAll(t, m, path), 1)
}

func TestMaintain_ConnectionError(t *testing.T) {
	m := NewManager(zerolog.Nop())

	err := m.Maintain(context.Background(), filepath.Join(t.TempDir(), "missing", "inventory.db"))
	require.ErrorIs(t, err, ErrConnection)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassNone},
		{"connection", connectionError(errors.New("boom"), "failed to open database"), ClassConnection},
		{"constraint", constraintError("item name must not be empty"), ClassConstraint},
		{"store", storeError(errors.New("disk I/O error"), "failed to list items"), ClassStore},
		{"closed", ErrSessionClosed, ClassStore},
		{"caller", errors.New("operator cancelled"), ClassCaller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
