package factory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an immutable production request.
// The total price is fixed when the order is created.
type Order struct {
	id         string
	furniture  FurnitureKind
	material   MaterialKind
	quantity   int
	totalPrice decimal.Decimal
	createdAt  time.Time
}

// NewOrder validates the request against the catalog and prices it
func NewOrder(furniture FurnitureKind, material MaterialKind, quantity int, createdAt time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be positive, got %d", quantity)}
	}
	price, err := PriceOf(furniture, material)
	if err != nil {
		return nil, err
	}
	return &Order{
		id:         uuid.New().String(),
		furniture:  furniture,
		material:   material,
		quantity:   quantity,
		totalPrice: price,
		createdAt:  createdAt,
	}, nil
}

// ReconstructOrder rebuilds a persisted order without re-pricing it.
// Catalog membership is checked later by whoever works the order.
func ReconstructOrder(id string, furniture FurnitureKind, material MaterialKind, quantity int, totalPrice decimal.Decimal, createdAt time.Time) (*Order, error) {
	if id == "" {
		return nil, &ErrInvalidArgument{Field: "order id", Reason: "cannot be empty"}
	}
	if quantity <= 0 {
		return nil, &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be positive, got %d", quantity)}
	}
	return &Order{
		id:         id,
		furniture:  furniture,
		material:   material,
		quantity:   quantity,
		totalPrice: totalPrice,
		createdAt:  createdAt,
	}, nil
}

// Getters

func (o *Order) ID() string                  { return o.id }
func (o *Order) Furniture() FurnitureKind    { return o.furniture }
func (o *Order) Material() MaterialKind      { return o.material }
func (o *Order) Quantity() int               { return o.quantity }
func (o *Order) TotalPrice() decimal.Decimal { return o.totalPrice }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }

// Product is the finished-goods key this order produces
func (o *Order) Product() Product {
	return Product{Furniture: o.furniture, Material: o.material}
}

func (o *Order) String() string {
	return fmt.Sprintf("%d x %s (order %s, %s)", o.quantity, o.Product(), o.id, o.totalPrice.StringFixed(2))
}
