package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client talks to a running factory daemon
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the daemon's Unix socket
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PlaceOrder queues an order and returns the daemon's reply fields
func (c *Client) PlaceOrder(ctx context.Context, furniture, material string, quantity int) (map[string]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"furniture": furniture,
		"material":  material,
		"quantity":  quantity,
	})
	if err != nil {
		return nil, err
	}
	return c.callStruct(ctx, methodPlaceOrder, req)
}

// GetJob returns the job tracking an order
func (c *Client) GetJob(ctx context.Context, orderID string) (map[string]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	return c.callStruct(ctx, methodGetJob, req)
}

// Status returns the daemon's current snapshot
func (c *Client) Status(ctx context.Context) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodStatus, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportRoster returns the roster document rendered by the daemon
func (c *Client) ExportRoster(ctx context.Context, format string) (string, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"format": format})
	if err != nil {
		return "", err
	}
	reply, err := c.callStruct(ctx, methodExportRoster, req)
	if err != nil {
		return "", err
	}
	document, _ := reply["document"].(string)
	return document, nil
}

// Shutdown asks the daemon to stop
func (c *Client) Shutdown(ctx context.Context) error {
	return c.conn.Invoke(ctx, methodShutdown, &emptypb.Empty{}, &emptypb.Empty{})
}

// Healthy reports whether the daemon answers its health check as serving
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *Client) callStruct(ctx context.Context, method string, req *structpb.Struct) (map[string]interface{}, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
