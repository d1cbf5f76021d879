package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	factorygrpc "github.com/andrescamacho/furniture-factory/internal/adapters/grpc"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a snapshot of the running factory",
		Long:  `Print budget, staff, machines, stock, pending orders and jobs as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(func(ctx context.Context, client *factorygrpc.Client) error {
				snap, err := client.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get status: %w", err)
				}
				out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(snap)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}
}

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and responsive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(func(ctx context.Context, client *factorygrpc.Client) error {
				serving, err := client.Healthy(ctx)
				if err != nil {
					return fmt.Errorf("health check failed: %w", err)
				}
				if !serving {
					return fmt.Errorf("daemon is not serving")
				}
				fmt.Println("✓ Daemon is healthy")
				fmt.Printf("  Socket: %s\n", socketPath)
				return nil
			})
		},
	}
}
