package cli

import (
	"context"
	"fmt"
	"time"

	factorygrpc "github.com/andrescamacho/furniture-factory/internal/adapters/grpc"
)

const requestTimeout = 10 * time.Second

// withDaemon dials the daemon socket and runs fn with a bounded context
func withDaemon(fn func(ctx context.Context, client *factorygrpc.Client) error) error {
	client, err := factorygrpc.Dial(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return fn(ctx, client)
}

func field(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return "-"
	}
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
