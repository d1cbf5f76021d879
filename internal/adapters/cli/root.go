package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	socketPath string
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "factory",
		Short: "Furniture factory simulator",
		Long: `Runs the furniture factory daemon and talks to it over its Unix socket.

Examples:
  factory run --config configs/factory.yaml
  factory run --restore
  factory order chair oak 3
  factory job 5b0e7c1a-4f0e-4a55-9d0c-3c1f8a1f2b7e
  factory status
  factory roster export --format xml --output roster.xml
  factory ledger list --limit 20
  factory stop`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: factory.yaml in . ./configs /etc/factory)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewOrderCommand())
	rootCmd.AddCommand(NewJobCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewRosterCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewStopCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("FACTORY_SOCKET"); path != "" {
		return path
	}
	return "/tmp/furniture-factory.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
