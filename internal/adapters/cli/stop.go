package cli

import (
	"context"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	factorygrpc "github.com/andrescamacho/furniture-factory/internal/adapters/grpc"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/config"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/pidfile"
)

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Long: `Ask the daemon to shut down gracefully. If the socket does not answer,
the process named in the PID file receives SIGTERM instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rpcErr := withDaemon(func(ctx context.Context, client *factorygrpc.Client) error {
				return client.Shutdown(ctx)
			})
			if rpcErr == nil {
				fmt.Println("✓ Shutdown requested")
				return nil
			}

			cfg := config.LoadConfigOrDefault(configPath)
			pid, err := pidfile.New(cfg.Daemon.PIDFile).Signal(syscall.SIGTERM)
			if err != nil {
				return fmt.Errorf("shutdown RPC failed (%v) and signal fallback failed: %w", rpcErr, err)
			}

			fmt.Printf("✓ Sent SIGTERM to daemon (PID %d)\n", pid)
			return nil
		},
	}
}
