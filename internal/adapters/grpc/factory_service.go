package grpc

import (
	"bytes"
	"context"
	"math"

	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/furniture-factory/internal/adapters/export"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/application/orders"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// FactoryService serves a running enterprise over gRPC
type FactoryService struct {
	ent      *enterprise.Enterprise
	validate *validator.Validate
	shutdown func()
}

var _ FactoryServiceServer = (*FactoryService)(nil)

// NewFactoryService wires the service; shutdown is called by the Shutdown RPC and may be nil
func NewFactoryService(ent *enterprise.Enterprise, shutdown func()) *FactoryService {
	return &FactoryService{
		ent:      ent,
		validate: validator.New(),
		shutdown: shutdown,
	}
}

func (s *FactoryService) PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()
	quantity, err := intField(fields, "quantity")
	if err != nil {
		return nil, toStatus(err)
	}
	placed := orders.PlaceOrderRequest{
		Furniture: stringField(fields, "furniture"),
		Material:  stringField(fields, "material"),
		Quantity:  quantity,
	}
	if err := s.validate.Struct(placed); err != nil {
		return nil, toStatus(err)
	}

	order, err := orders.Place(ctx, s.ent, s.ent.Clock(), placed)
	if err != nil {
		return nil, toStatus(err)
	}

	reply, err := structpb.NewStruct(map[string]interface{}{
		"order_id":    order.ID(),
		"product":     order.Product().String(),
		"quantity":    order.Quantity(),
		"total_price": order.TotalPrice().String(),
	})
	return reply, toStatus(err)
}

func (s *FactoryService) GetJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID := stringField(req.AsMap(), "order_id")
	if orderID == "" {
		return nil, toStatus(&factory.ErrInvalidArgument{Field: "order_id", Reason: "cannot be empty"})
	}

	job, ok := s.ent.Job(orderID)
	if !ok {
		return nil, toStatus(&ErrJobNotFound{OrderID: orderID})
	}
	reply, err := structpb.NewStruct(jobToMap(job.State()))
	return reply, toStatus(err)
}

func (s *FactoryService) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	reply, err := snapshotToStruct(s.ent.Snapshot())
	return reply, toStatus(err)
}

func (s *FactoryService) ExportRoster(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req.AsMap(), "format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return nil, toStatus(&factory.ErrInvalidArgument{Field: "format", Reason: err.Error()})
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, export.FromSnapshot(s.ent.Snapshot()), format); err != nil {
		return nil, toStatus(err)
	}
	reply, err := structpb.NewStruct(map[string]interface{}{
		"format":   string(format),
		"document": buf.String(),
	})
	return reply, toStatus(err)
}

func (s *FactoryService) Shutdown(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "[FactoryService] Shutdown requested over RPC", nil)
	if s.shutdown != nil {
		s.shutdown()
	}
	return &emptypb.Empty{}, nil
}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// structpb numbers always arrive as float64
func intField(fields map[string]interface{}, key string) (int, error) {
	v, ok := fields[key].(float64)
	if !ok {
		return 0, nil
	}
	if v != math.Trunc(v) {
		return 0, &factory.ErrInvalidArgument{Field: key, Reason: "must be a whole number"}
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, &factory.ErrInvalidArgument{Field: key, Reason: "out of range"}
	}
	return int(v), nil
}
