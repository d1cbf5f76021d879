package factory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FurnitureKind identifies a product the factory can build
type FurnitureKind string

const (
	FurnitureTable    FurnitureKind = "TABLE"
	FurnitureChair    FurnitureKind = "CHAIR"
	FurnitureWardrobe FurnitureKind = "WARDROBE"
)

// basePrice is added to the material cost of every piece
var basePrice = decimal.NewFromInt(100)

// FurnitureSpec is the bill of materials for one piece
type FurnitureSpec struct {
	Kind           FurnitureKind
	MaterialUnits  int
	ProductionTime time.Duration
}

var furnitureCatalog = map[FurnitureKind]FurnitureSpec{
	FurnitureTable:    {Kind: FurnitureTable, MaterialUnits: 4, ProductionTime: 1000 * time.Millisecond},
	FurnitureChair:    {Kind: FurnitureChair, MaterialUnits: 2, ProductionTime: 500 * time.Millisecond},
	FurnitureWardrobe: {Kind: FurnitureWardrobe, MaterialUnits: 6, ProductionTime: 1500 * time.Millisecond},
}

// AllFurniture returns the catalog furniture kinds in a stable order
func AllFurniture() []FurnitureKind {
	return []FurnitureKind{FurnitureTable, FurnitureChair, FurnitureWardrobe}
}

// LookupFurniture returns the spec for kind
func LookupFurniture(kind FurnitureKind) (FurnitureSpec, bool) {
	s, ok := furnitureCatalog[kind]
	return s, ok
}

// ParseFurnitureKind accepts catalog names case-insensitively
func ParseFurnitureKind(s string) (FurnitureKind, error) {
	kind := FurnitureKind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := furnitureCatalog[kind]; !ok {
		return "", &ErrInvalidArgument{Field: "furniture", Reason: "unknown furniture kind " + s}
	}
	return kind, nil
}

func (k FurnitureKind) String() string { return string(k) }

// PriceOf is unitPrice(material) × units(furniture) + 100
func PriceOf(furniture FurnitureKind, material MaterialKind) (decimal.Decimal, error) {
	spec, ok := LookupFurniture(furniture)
	if !ok {
		return decimal.Zero, &ErrInvalidArgument{Field: "furniture", Reason: "unknown furniture kind " + string(furniture)}
	}
	m, ok := LookupMaterial(material)
	if !ok {
		return decimal.Zero, &ErrUnknownMaterial{Kind: material}
	}
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(spec.MaterialUnits))).Add(basePrice), nil
}

// Product keys finished goods by what they are and what they are made of
type Product struct {
	Furniture FurnitureKind
	Material  MaterialKind
}

func (p Product) String() string {
	return string(p.Material) + " " + string(p.Furniture)
}
