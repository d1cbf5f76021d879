package orders

import (
	"context"
	"fmt"

	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// PlaceOrderRequest is a customer order by catalog name
type PlaceOrderRequest struct {
	Furniture string `json:"furniture" validate:"required"`
	Material  string `json:"material" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=1000"`
}

// Place parses a customer order and queues it
func Place(ctx context.Context, sink Sink, clock shared.Clock, req PlaceOrderRequest) (*factory.Order, error) {
	furniture, err := factory.ParseFurnitureKind(req.Furniture)
	if err != nil {
		return nil, err
	}
	material, err := factory.ParseMaterialKind(req.Material)
	if err != nil {
		return nil, err
	}

	order, err := factory.NewOrder(furniture, material, req.Quantity, clock.Now())
	if err != nil {
		return nil, err
	}
	if err := sink.EnqueueOrder(order); err != nil {
		return nil, fmt.Errorf("failed to queue order: %w", err)
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("[Orders] Accepted %s", order), map[string]interface{}{
		"order_id":    order.ID(),
		"total_price": order.TotalPrice().String(),
	})
	return order, nil
}
