package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saltyorg/invtrack/internal/config"
	"github.com/saltyorg/invtrack/internal/database"
	"github.com/saltyorg/invtrack/internal/logging"
	"github.com/saltyorg/invtrack/internal/menu"
)

const (
	envPrefix     = "INVTRACK"
	defaultDBPath = "./inventory.db"
)

// app holds the resolved flags and the collaborators built from them.
type app struct {
	dbPath    string
	logFile   string
	noLogFile bool
	verbosity int

	log      zerolog.Logger
	sessions *database.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "invtrack",
		Short:             "invtrack - SQLite inventory tracker",
		Long:              `invtrack keeps a small inventory (name, quantity, price) in a SQLite file and edits it from an interactive menu or one-shot commands.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runMenu,
	}

	rootCmd.PersistentFlags().StringVarP(&a.dbPath, "db", "d", defaultDBPath, "SQLite database path (or set INVTRACK_DB env var)")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Log file path (default: inventory_manager.log next to the database)")
	rootCmd.PersistentFlags().BoolVar(&a.noLogFile, "no-log-file", false, "Log to the console only")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "menu",
			Short: "Run the interactive menu",
			Args:  cobra.NoArgs,
			RunE:  a.runMenu,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the inventory table if it does not exist",
			Args:  cobra.NoArgs,
			RunE:  a.runInit,
		},
		&cobra.Command{
			Use:   "add NAME QUANTITY PRICE",
			Short: "Add an item",
			Args:  cobra.ExactArgs(3),
			RunE:  a.runAdd,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all items",
			Args:  cobra.NoArgs,
			RunE:  a.runList,
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one item",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runGet,
		},
		&cobra.Command{
			Use:   "update ID QUANTITY PRICE",
			Short: "Set the quantity and price of an item",
			Args:  cobra.ExactArgs(3),
			RunE:  a.runUpdate,
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete an item",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runDelete,
		},
		&cobra.Command{
			Use:   "vacuum",
			Short: "Optimize and compact the database file",
			Args:  cobra.NoArgs,
			RunE:  a.runVacuum,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			// Skip logger and store setup.
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "invtrack %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(config.EnvSettings{Prefix: envPrefix})

	// Flags beat environment, environment beats defaults.
	if !cmd.Flags().Changed("db") {
		a.dbPath = loader.String("db", defaultDBPath)
	}
	if !cmd.Flags().Changed("log-file") {
		a.logFile = loader.String("log.file", logging.FilePathFor(a.dbPath))
	}
	if a.noLogFile {
		a.logFile = ""
	}

	console := cmd.ErrOrStderr()
	a.log = logging.New(logging.Options{
		Verbosity: a.verbosity,
		Console:   console,
		NoColor:   !isTerminal(console),
		FilePath:  a.logFile,
		Loader:    loader,
	})
	a.sessions = database.NewManager(a.log)

	a.log.Debug().
		Str("version", version).
		Str("database", a.dbPath).
		Str("log_file", a.logFile).
		Msg("Starting invtrack")
	return nil
}

// withSchema runs fn in one session after making sure the table exists.
func (a *app) withSchema(ctx context.Context, fn func(*database.Handle) error) error {
	return a.sessions.WithSession(ctx, a.dbPath, func(h *database.Handle) error {
		if err := h.EnsureSchema(ctx); err != nil {
			return err
		}
		return fn(h)
	})
}

func (a *app) runMenu(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	return menu.New(a.sessions, a.dbPath, cmd.InOrStdin(), out, isTerminal(out)).Run(cmd.Context())
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	if err := a.withSchema(cmd.Context(), func(*database.Handle) error { return nil }); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Inventory schema ready in %s\n", a.dbPath)
	return nil
}

func (a *app) runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	qty, err := parseInt("quantity", args[1])
	if err != nil {
		return err
	}
	price, err := parseFloat("price", args[2])
	if err != nil {
		return err
	}

	var id int64
	var added bool
	err = a.withSchema(cmd.Context(), func(h *database.Handle) error {
		id, added, err = h.InsertItem(cmd.Context(), name, qty, price)
		return err
	})
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("item %q could not be added", name)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Item '%s' added successfully (ID: %d).\n", name, id)
	return nil
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	var items []database.Item
	var count int64
	err := a.withSchema(cmd.Context(), func(h *database.Handle) error {
		var err error
		if items, err = h.ListItems(cmd.Context()); err != nil {
			return err
		}
		count, err = h.CountItems(cmd.Context())
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, item := range items {
		fmt.Fprintln(out, menu.FormatItem(item))
	}
	fmt.Fprintf(out, "%d item(s)\n", count)
	return nil
}

func (a *app) runGet(cmd *cobra.Command, args []string) error {
	id, err := parseInt("id", args[0])
	if err != nil {
		return err
	}

	var item *database.Item
	err = a.withSchema(cmd.Context(), func(h *database.Handle) error {
		item, err = h.GetItem(cmd.Context(), id)
		return err
	})
	if err != nil {
		return err
	}

	if item == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No item found for item ID: %d\n", id)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), menu.FormatItem(*item))
	return nil
}

func (a *app) runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseInt("id", args[0])
	if err != nil {
		return err
	}
	qty, err := parseInt("quantity", args[1])
	if err != nil {
		return err
	}
	price, err := parseFloat("price", args[2])
	if err != nil {
		return err
	}

	var updated bool
	err = a.withSchema(cmd.Context(), func(h *database.Handle) error {
		updated, err = h.UpdateItem(cmd.Context(), id, qty, price)
		return err
	})
	if err != nil {
		return err
	}

	if updated {
		fmt.Fprintf(cmd.OutOrStdout(), "Inventory for item ID %d updated successfully.\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No inventory item found with ID %d. Nothing performed.\n", id)
	}
	return nil
}

func (a *app) runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseInt("id", args[0])
	if err != nil {
		return err
	}

	var deleted bool
	err = a.withSchema(cmd.Context(), func(h *database.Handle) error {
		deleted, err = h.DeleteItem(cmd.Context(), id)
		return err
	})
	if err != nil {
		return err
	}

	if deleted {
		fmt.Fprintf(cmd.OutOrStdout(), "Item ID: %d, successfully deleted.\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Item ID: %d was not found. Nothing performed.\n", id)
	}
	return nil
}

func (a *app) runVacuum(cmd *cobra.Command, args []string) error {
	if err := a.sessions.Maintain(cmd.Context(), a.dbPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database %s optimized\n", a.dbPath)
	return nil
}

func parseInt(field, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", field, s)
	}
	return v, nil
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", field, s)
	}
	return v, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
