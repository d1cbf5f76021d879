package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	factorygrpc "github.com/andrescamacho/furniture-factory/internal/adapters/grpc"
)

// NewOrderCommand creates the order command
func NewOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order <furniture> <material> <quantity>",
		Short: "Place a customer order",
		Long: `Queue an order with the running daemon.

Furniture: chair, table, wardrobe
Material:  oak, pine, birch, maple

Example:
  factory order table maple 2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[2], err)
			}

			return withDaemon(func(ctx context.Context, client *factorygrpc.Client) error {
				reply, err := client.PlaceOrder(ctx, args[0], args[1], quantity)
				if err != nil {
					return fmt.Errorf("failed to place order: %w", err)
				}

				fmt.Println("✓ Order accepted")
				fmt.Printf("  Order ID:    %s\n", field(reply, "order_id"))
				fmt.Printf("  Product:     %s\n", field(reply, "product"))
				fmt.Printf("  Quantity:    %s\n", field(reply, "quantity"))
				fmt.Printf("  Total price: %s\n", field(reply, "total_price"))
				return nil
			})
		},
	}

	return cmd
}

// NewJobCommand creates the job command
func NewJobCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "job <order-id>",
		Short: "Show the production job for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(func(ctx context.Context, client *factorygrpc.Client) error {
				job, err := client.GetJob(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get job: %w", err)
				}

				fmt.Printf("Job %s\n", field(job, "order_id"))
				fmt.Printf("  Product:   %s x%s\n", field(job, "product"), field(job, "quantity"))
				fmt.Printf("  Status:    %s\n", field(job, "status"))
				fmt.Printf("  Assignee:  %s\n", field(job, "assignee"))
				fmt.Printf("  Created:   %s\n", field(job, "created_at"))
				fmt.Printf("  Started:   %s\n", field(job, "started_at"))
				fmt.Printf("  Finished:  %s\n", field(job, "finished_at"))
				fmt.Printf("  Runtime:   %s\n", field(job, "runtime"))
				if _, failed := job["error"]; failed {
					fmt.Printf("  Error:     %s\n", field(job, "error"))
				}
				return nil
			})
		},
	}
}
