// Package menu implements the interactive text menu over the inventory
// store. Every action runs in its own database session.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/saltyorg/invtrack/internal/database"
)

// Sessions runs a unit of work inside a database session.
type Sessions interface {
	WithSession(ctx context.Context, path string, fn func(*database.Handle) error) error
}

// errExit ends the menu loop without an error.
var errExit = errors.New("exit")

const clearSequence = "\033[H\033[2J"

// Menu is the interactive Add / View / Search / Update / Delete loop.
type Menu struct {
	sessions    Sessions
	store       string
	in          *bufio.Scanner
	out         io.Writer
	clearScreen bool
}

// New creates a menu reading operator input from in and writing to out.
// clearScreen should only be set when out is a terminal.
func New(sessions Sessions, store string, in io.Reader, out io.Writer, clearScreen bool) *Menu {
	return &Menu{
		sessions:    sessions,
		store:       store,
		in:          bufio.NewScanner(in),
		out:         out,
		clearScreen: clearScreen,
	}
}

// Run ensures the schema exists and then serves the menu until the operator
// exits or input ends. Store failures inside an action are reported to the
// operator and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	err := m.sessions.WithSession(ctx, m.store, func(h *database.Handle) error {
		return h.EnsureSchema(ctx)
	})
	if err != nil {
		return err
	}

	actions := map[int64]func(context.Context) error{
		1: m.addItem,
		2: m.viewAll,
		3: m.searchItem,
		4: m.updateItem,
		5: m.deleteItem,
		6: m.exit,
	}

	for {
		m.printf("\n*** Connected to %s database ***\n\n", m.store)
		m.printf("1. Add Item\n")
		m.printf("2. View All Items\n")
		m.printf("3. Search Item by ID\n")
		m.printf("4. Update Item\n")
		m.printf("5. Delete Item\n")
		m.printf("6. Exit Application\n\n")

		choice, err := m.readInt("Please make a selection (1-6): ")
		if err != nil {
			return exitErr(err)
		}

		action, ok := actions[choice]
		if !ok {
			m.printf("Please enter a valid selection.\n")
			continue
		}

		m.clear()
		if err := action(ctx); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
				return exitErr(err)
			}
			m.printf("Error: %v\n", err)
			if err := m.pause(); err != nil {
				return exitErr(err)
			}
		}
	}
}

func (m *Menu) addItem(ctx context.Context) error {
	m.printf("\n*** Add Item to Inventory Database ***\n\n")

	name, err := m.readLine("Item Name: ")
	if err != nil {
		return err
	}
	qty, err := m.readInt("Item Quantity: ")
	if err != nil {
		return err
	}
	price, err := m.readFloat("Item Price: ")
	if err != nil {
		return err
	}

	var id int64
	var added bool
	err = m.sessions.WithSession(ctx, m.store, func(h *database.Handle) error {
		id, added, err = h.InsertItem(ctx, name, qty, price)
		return err
	})
	if err != nil {
		return err
	}

	if added {
		m.printf("Item '%s' added successfully (ID: %d).\n", name, id)
	} else {
		m.printf("Item '%s' could not be added.\n", name)
	}
	return m.pause()
}

func (m *Menu) viewAll(ctx context.Context) error {
	m.printf("\n*** Viewing Full Inventory ***\n\n")

	var items []database.Item
	err := m.sessions.WithSession(ctx, m.store, func(h *database.Handle) error {
		var err error
		items, err = h.ListItems(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		m.printf("Inventory is empty.\n")
	}
	for _, item := range items {
		m.printf("%s\n", FormatItem(item))
	}
	if len(items) > 0 {
		m.printf("--------------------\n")
	}
	return m.pause()
}

func (m *Menu) searchItem(ctx context.Context) error {
	m.printf("\n*** Search Item by ID ***\n\n")

	id, err := m.readInt("Enter item ID number: ")
	if err != nil {
		return err
	}

	item, err := m.getItem(ctx, id)
	if err != nil {
		return err
	}
	m.showItem(id, item)
	return m.pause()
}

func (m *Menu) updateItem(ctx context.Context) error {
	m.printf("\n*** Update Item in Inventory Database ***\n\n")

	id, err := m.readInt("Item ID: ")
	if err != nil {
		return err
	}
	qty, err := m.readInt("Enter new item quantity: ")
	if err != nil {
		return err
	}
	price, err := m.readFloat("Enter new item price: ")
	if err != nil {
		return err
	}

	var updated bool
	err = m.sessions.WithSession(ctx, m.store, func(h *database.Handle) error {
		updated, err = h.UpdateItem(ctx, id, qty, price)
		return err
	})
	if err != nil {
		return err
	}

	if updated {
		m.printf("Inventory for item ID %d updated successfully.\n", id)
	} else {
		m.printf("No inventory item found with ID %d. Nothing performed.\n", id)
	}
	return m.pause()
}

func (m *Menu) deleteItem(ctx context.Context) error {
	m.printf("\n*** Delete Item in Inventory Database ***\n\n")

	id, err := m.readInt("Item ID to Delete: ")
	if err != nil {
		return err
	}

	item, err := m.getItem(ctx, id)
	if err != nil {
		return err
	}
	m.showItem(id, item)
	if item == nil {
		return m.pause()
	}

	confirm, err := m.readLine("Do you really want to delete this item? (Y/n): ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(confirm), "y") {
		m.printf("Deletion of item ID: %d cancelled.\n", id)
		return m.pause()
	}

	var deleted bool
	err = m.sessions.WithSession(ctx, m.store, func(h *database.Handle) error {
		deleted, err = h.DeleteItem(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	if deleted {
		m.printf("Item ID: %d, successfully deleted.\n", id)
	} else {
		m.printf("Item ID: %d was not found. Nothing performed.\n", id)
	}
	return m.pause()
}

func (m *Menu) exit(context.Context) error {
	if _, err := m.readLine("\nPress enter to exit..."); err != nil {
		return err
	}
	return errExit
}

func (m *Menu) getItem(ctx context.Context, id int64) (*database.Item, error) {
	var item *database.Item
	err := m.sessions.WithSession(ctx, m.store, func(h *database.Handle) error {
		var err error
		item, err = h.GetItem(ctx, id)
		return err
	})
	return item, err
}

func (m *Menu) showItem(id int64, item *database.Item) {
	if item == nil {
		m.printf("No item found for item ID: %d\n", id)
		return
	}
	m.printf("%s\n", FormatItem(*item))
}

// FormatItem renders an item as a single display line.
func FormatItem(item database.Item) string {
	return fmt.Sprintf("ID: %d | Name: %-8s | Qty: %-3d | Price: %-5.2f", item.ID, item.Name, item.Quantity, item.Price)
}

func (m *Menu) pause() error {
	if _, err := m.readLine("Press enter to continue..."); err != nil {
		return err
	}
	m.clear()
	return nil
}

func (m *Menu) clear() {
	if m.clearScreen {
		m.printf("%s", clearSequence)
	}
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Menu) readLine(prompt string) (string, error) {
	m.printf("%s", prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return m.in.Text(), nil
}

func (m *Menu) readInt(prompt string) (int64, error) {
	for {
		line, err := m.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err == nil {
			return v, nil
		}
		m.printf("Please enter a valid input.\n")
	}
}

func (m *Menu) readFloat(prompt string) (float64, error) {
	for {
		line, err := m.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err == nil {
			return v, nil
		}
		m.printf("Please enter a valid input.\n")
	}
}

// exitErr turns the normal ways of leaving the menu into a nil error.
func exitErr(err error) error {
	if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
