package menu

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/invtrack/internal/database"
)

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func newStore(t *testing.T) (*database.Manager, string) {
	t.Helper()
	return database.NewManager(zerolog.Nop()), filepath.Join(t.TempDir(), "inventory.db")
}

func TestMenu_FullWalkthrough(t *testing.T) {
	sessions, path := newStore(t)
	var out bytes.Buffer

	in := script(
		// add, with one bad quantity
		"1", "Remote", "five", "5", "10.99", "",
		"2", "",
		"4", "1", "100", "19.99", "",
		"3", "1", "",
		// delete cancelled, then confirmed
		"5", "1", "n", "",
		"5", "1", "Y", "",
		"3", "1", "",
		"9",
		"6", "",
	)

	err := New(sessions, path, in, &out, false).Run(context.Background())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "*** Connected to "+path+" database ***")
	assert.Contains(t, got, "Please enter a valid input.")
	assert.Contains(t, got, "Item 'Remote' added successfully (ID: 1).")
	assert.Contains(t, got, "ID: 1 | Name: Remote   | Qty: 5   | Price: 10.99")
	assert.Contains(t, got, "Inventory for item ID 1 updated successfully.")
	assert.Contains(t, got, "ID: 1 | Name: Remote   | Qty: 100 | Price: 19.99")
	assert.Contains(t, got, "Deletion of item ID: 1 cancelled.")
	assert.Contains(t, got, "Item ID: 1, successfully deleted.")
	assert.Contains(t, got, "No item found for item ID: 1")
	assert.Contains(t, got, "Please enter a valid selection.")
	assert.NotContains(t, got, clearSequence)

	items, err := database.WithSessionResult(context.Background(), sessions, path, func(h *database.Handle) ([]database.Item, error) {
		return h.ListItems(context.Background())
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMenu_EndOfInputExits(t *testing.T) {
	sessions, path := newStore(t)
	var out bytes.Buffer

	err := New(sessions, path, script("1", "Half"), &out, true).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Item Quantity: ")
}

func TestMenu_MissingItems(t *testing.T) {
	sessions, path := newStore(t)
	var out bytes.Buffer

	in := script(
		"2", "",
		"4", "42", "1", "1.0", "",
		"5", "42", "",
		"6", "",
	)
	require.NoError(t, New(sessions, path, in, &out, true).Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Inventory is empty.")
	assert.Contains(t, got, "No inventory item found with ID 42. Nothing performed.")
	assert.Contains(t, got, "No item found for item ID: 42")
	assert.Contains(t, got, clearSequence)
}

// failingSessions succeeds for the schema session and fails afterwards.
type failingSessions struct {
	inner *database.Manager
	calls int
}

func (f *failingSessions) WithSession(ctx context.Context, path string, fn func(*database.Handle) error) error {
	f.calls++
	if f.calls == 1 {
		return f.inner.WithSession(ctx, path, fn)
	}
	return errors.New("disk I/O error")
}

func TestMenu_StoreFailureIsReportedAndLoopContinues(t *testing.T) {
	inner, path := newStore(t)
	sessions := &failingSessions{inner: inner}
	var out bytes.Buffer

	in := script("2", "", "6", "")
	require.NoError(t, New(sessions, path, in, &out, false).Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Error: disk I/O error")
	assert.Contains(t, got, "Press enter to exit...")
}

func TestMenu_SchemaFailureIsReturned(t *testing.T) {
	sessions := database.NewManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "missing", "inventory.db")

	err := New(sessions, path, script("6", ""), &bytes.Buffer{}, false).Run(context.Background())
	require.ErrorIs(t, err, database.ErrConnection)
}

func TestFormatItem(t *testing.T) {
	got := FormatItem(database.Item{ID: 7, Name: "Cable", Quantity: 3, Price: 2.5})
	assert.Equal(t, "ID: 7 | Name: Cable    | Qty: 3   | Price: 2.50 ", got)
}
