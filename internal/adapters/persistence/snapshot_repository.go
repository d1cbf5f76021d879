package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// GormSnapshotRepository implements enterprise.SnapshotRepository using GORM.
// Jobs are not persisted; a restored factory only keeps its pending queue.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Save persists a snapshot with all its child rows in one transaction
func (r *GormSnapshotRepository) Save(ctx context.Context, snap enterprise.Snapshot) (string, error) {
	id := snap.ID
	if id == "" {
		id = uuid.New().String()
	}

	model := r.snapshotToModel(id, snap)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	return id, nil
}

// Latest loads the most recent snapshot, or nil when none has been saved
func (r *GormSnapshotRepository) Latest(ctx context.Context) (*enterprise.Snapshot, error) {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

	var model SnapshotModel
	err := r.db.WithContext(ctx).
		Preload("Employees", byPosition).
		Preload("Machines", byPosition).
		Preload("Stock").
		Preload("Orders", byPosition).
		Order("taken_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	snap, err := r.modelToSnapshot(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to convert snapshot %s: %w", model.ID, err)
	}
	return snap, nil
}

func (r *GormSnapshotRepository) snapshotToModel(id string, snap enterprise.Snapshot) *SnapshotModel {
	model := &SnapshotModel{
		ID:             id,
		TakenAt:        snap.TakenAt,
		BudgetStarting: snap.Budget.Starting.String(),
		BudgetIncome:   snap.Budget.Income.String(),
		BudgetExpenses: snap.Budget.Expenses.String(),
	}

	staff := make([]enterprise.EmployeeSnapshot, 0, 1+len(snap.Carpenters)+len(snap.Repairmen))
	if snap.Manager != nil {
		staff = append(staff, *snap.Manager)
	}
	staff = append(staff, snap.Carpenters...)
	staff = append(staff, snap.Repairmen...)
	for i, s := range staff {
		model.Employees = append(model.Employees, SnapshotEmployeeModel{
			SnapshotID: id,
			Position:   i,
			EmployeeID: s.ID,
			Name:       s.Name,
			Role:       string(s.Role),
			Produced:   s.Produced,
			Repaired:   s.Repaired,
		})
	}

	for i, m := range snap.Machines {
		model.Machines = append(model.Machines, SnapshotMachineModel{
			SnapshotID:    id,
			Position:      i,
			MachineID:     m.ID,
			MaxDurability: m.MaxDurability,
			Durability:    m.Durability,
			RepairTimeMs:  m.RepairTime.Milliseconds(),
		})
	}

	for kind, qty := range snap.RawMaterials {
		model.Stock = append(model.Stock, SnapshotStockModel{
			SnapshotID: id,
			Material:   string(kind),
			Quantity:   qty,
		})
	}
	for _, pc := range snap.FinishedProducts {
		model.Stock = append(model.Stock, SnapshotStockModel{
			SnapshotID: id,
			Furniture:  string(pc.Product.Furniture),
			Material:   string(pc.Product.Material),
			Quantity:   pc.Quantity,
		})
	}

	for i, o := range snap.PendingOrders {
		model.Orders = append(model.Orders, SnapshotOrderModel{
			SnapshotID: id,
			Position:   i,
			OrderID:    o.ID,
			Furniture:  string(o.Furniture),
			Material:   string(o.Material),
			Quantity:   o.Quantity,
			TotalPrice: o.TotalPrice.String(),
			CreatedAt:  o.CreatedAt,
		})
	}
	return model
}

func (r *GormSnapshotRepository) modelToSnapshot(model *SnapshotModel) (*enterprise.Snapshot, error) {
	starting, err := decimal.NewFromString(model.BudgetStarting)
	if err != nil {
		return nil, err
	}
	income, err := decimal.NewFromString(model.BudgetIncome)
	if err != nil {
		return nil, err
	}
	expenses, err := decimal.NewFromString(model.BudgetExpenses)
	if err != nil {
		return nil, err
	}

	snap := &enterprise.Snapshot{
		ID:      model.ID,
		TakenAt: model.TakenAt,
		Budget: enterprise.BudgetSnapshot{
			Starting: starting,
			Income:   income,
			Expenses: expenses,
			Current:  starting.Add(income).Sub(expenses),
		},
		RawMaterials: make(map[factory.MaterialKind]int),
	}

	for _, e := range model.Employees {
		role, err := factory.ParseRole(e.Role)
		if err != nil {
			return nil, err
		}
		s := enterprise.EmployeeSnapshot{
			ID:       e.EmployeeID,
			Name:     e.Name,
			Role:     role,
			Produced: e.Produced,
			Repaired: e.Repaired,
		}
		switch role {
		case factory.RoleManager:
			m, err := factory.NewManager(e.EmployeeID, e.Name)
			if err != nil {
				return nil, err
			}
			s.Salary = m.CalculateSalary()
			snap.Manager = &s
		case factory.RoleCarpenter:
			s.Salary = factory.CarpenterSalary(e.Produced)
			snap.Carpenters = append(snap.Carpenters, s)
		case factory.RoleRepairman:
			rm, err := factory.ReconstructRepairman(e.EmployeeID, e.Name, e.Repaired)
			if err != nil {
				return nil, err
			}
			s.Salary = rm.CalculateSalary()
			snap.Repairmen = append(snap.Repairmen, s)
		}
	}

	for _, m := range model.Machines {
		snap.Machines = append(snap.Machines, factory.MachineState{
			ID:            m.MachineID,
			MaxDurability: m.MaxDurability,
			Durability:    m.Durability,
			Broken:        m.Durability == 0,
			RepairTime:    time.Duration(m.RepairTimeMs) * time.Millisecond,
		})
	}

	for _, s := range model.Stock {
		material, err := factory.ParseMaterialKind(s.Material)
		if err != nil {
			return nil, err
		}
		if s.Furniture == "" {
			snap.RawMaterials[material] = s.Quantity
			continue
		}
		furniture, err := factory.ParseFurnitureKind(s.Furniture)
		if err != nil {
			return nil, err
		}
		snap.FinishedProducts = append(snap.FinishedProducts, enterprise.ProductCount{
			Product:  factory.Product{Furniture: furniture, Material: material},
			Quantity: s.Quantity,
		})
	}

	for _, o := range model.Orders {
		price, err := decimal.NewFromString(o.TotalPrice)
		if err != nil {
			return nil, err
		}
		snap.PendingOrders = append(snap.PendingOrders, enterprise.OrderSnapshot{
			ID:         o.OrderID,
			Furniture:  factory.FurnitureKind(o.Furniture),
			Material:   factory.MaterialKind(o.Material),
			Quantity:   o.Quantity,
			TotalPrice: price,
			CreatedAt:  o.CreatedAt,
		})
	}
	return snap, nil
}
