package factory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaterialKind identifies a raw material in the catalog
type MaterialKind string

const (
	MaterialOak   MaterialKind = "OAK"
	MaterialPine  MaterialKind = "PINE"
	MaterialBirch MaterialKind = "BIRCH"
	MaterialMaple MaterialKind = "MAPLE"
)

// Material is a catalog entry for a raw material
type Material struct {
	Kind      MaterialKind
	UnitPrice decimal.Decimal
}

var materialCatalog = map[MaterialKind]Material{
	MaterialOak:   {Kind: MaterialOak, UnitPrice: decimal.NewFromInt(10)},
	MaterialPine:  {Kind: MaterialPine, UnitPrice: decimal.NewFromInt(8)},
	MaterialBirch: {Kind: MaterialBirch, UnitPrice: decimal.NewFromInt(9)},
	MaterialMaple: {Kind: MaterialMaple, UnitPrice: decimal.NewFromInt(11)},
}

// AllMaterials returns the catalog materials in a stable order
func AllMaterials() []MaterialKind {
	return []MaterialKind{MaterialOak, MaterialPine, MaterialBirch, MaterialMaple}
}

// LookupMaterial returns the catalog entry for kind
func LookupMaterial(kind MaterialKind) (Material, bool) {
	m, ok := materialCatalog[kind]
	return m, ok
}

// ParseMaterialKind accepts catalog names case-insensitively ("oak", "Oak", "OAK")
func ParseMaterialKind(s string) (MaterialKind, error) {
	kind := MaterialKind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := materialCatalog[kind]; !ok {
		return "", &ErrUnknownMaterial{Kind: MaterialKind(s)}
	}
	return kind, nil
}

func (k MaterialKind) String() string { return string(k) }

// IsValid reports whether the kind is in the catalog
func (k MaterialKind) IsValid() bool {
	_, ok := materialCatalog[k]
	return ok
}

// RestockCost is the price of buying quantity units of kind
func RestockCost(kind MaterialKind, quantity int) (decimal.Decimal, error) {
	m, ok := LookupMaterial(kind)
	if !ok {
		return decimal.Zero, &ErrUnknownMaterial{Kind: kind}
	}
	if quantity < 0 {
		return decimal.Zero, &ErrInvalidArgument{Field: "quantity", Reason: fmt.Sprintf("must be non-negative, got %d", quantity)}
	}
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))), nil
}
