package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/furniture-factory/internal/adapters/export"
	factorygrpc "github.com/andrescamacho/furniture-factory/internal/adapters/grpc"
)

// NewRosterCommand creates the roster command with subcommands
func NewRosterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Employee roster operations",
	}
	cmd.AddCommand(newRosterExportCommand())
	return cmd
}

func newRosterExportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the employee roster",
		Long: `Export every carpenter and repairman with their output and salary,
highest paid first.

Examples:
  factory roster export
  factory roster export --format xml --output roster.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := export.ParseFormat(format); err != nil {
				return err
			}

			return withDaemon(func(ctx context.Context, client *factorygrpc.Client) error {
				document, err := client.ExportRoster(ctx, format)
				if err != nil {
					return fmt.Errorf("failed to export roster: %w", err)
				}
				if output == "" {
					fmt.Print(document)
					return nil
				}
				if err := os.WriteFile(output, []byte(document), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Printf("✓ Roster written to %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, xml or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
