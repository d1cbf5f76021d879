package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/furniture-factory/internal/adapters/persistence"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/config"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/database"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Financial ledger operations",
		Long: `View the budget movements recorded by the daemon: sales income,
material purchases and other expenses.

Examples:
  factory ledger list
  factory ledger list --limit 20`,
	}

	cmd.AddCommand(newLedgerListCommand())

	return cmd
}

func newLedgerListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerList(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to show (0 for all)")

	return cmd
}

func runLedgerList(limit int) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	entries, err := persistence.NewGormLedgerRepository(db).FindAll(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No ledger entries found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tKIND\tAMOUNT\tBALANCE\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp().Format(time.RFC3339),
			e.Kind(),
			e.Amount().StringFixed(2),
			e.BalanceAfter().StringFixed(2),
			e.Description(),
		)
	}
	return w.Flush()
}
