package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// GormLedgerRepository implements factory.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GORM ledger repository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Save persists a new ledger entry
func (r *GormLedgerRepository) Save(ctx context.Context, entry *factory.LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("ledger entry cannot be nil")
	}

	model := &LedgerEntryModel{
		ID:            entry.ID(),
		Kind:          string(entry.Kind()),
		Amount:        entry.Amount().String(),
		BalanceBefore: entry.BalanceBefore().String(),
		BalanceAfter:  entry.BalanceAfter().String(),
		Description:   entry.Description(),
		Timestamp:     entry.Timestamp(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// FindAll returns the newest entries first; limit <= 0 means no limit
func (r *GormLedgerRepository) FindAll(ctx context.Context, limit int) ([]*factory.LedgerEntry, error) {
	query := r.db.WithContext(ctx).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []LedgerEntryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}

	entries := make([]*factory.LedgerEntry, len(models))
	for i := range models {
		entry, err := r.modelToEntry(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert ledger entry %s: %w", models[i].ID, err)
		}
		entries[i] = entry
	}
	return entries, nil
}

func (r *GormLedgerRepository) modelToEntry(model *LedgerEntryModel) (*factory.LedgerEntry, error) {
	amount, err := decimal.NewFromString(model.Amount)
	if err != nil {
		return nil, err
	}
	before, err := decimal.NewFromString(model.BalanceBefore)
	if err != nil {
		return nil, err
	}
	after, err := decimal.NewFromString(model.BalanceAfter)
	if err != nil {
		return nil, err
	}

	return factory.ReconstructLedgerEntry(
		model.ID,
		factory.EntryKind(model.Kind),
		amount,
		before,
		after,
		model.Description,
		model.Timestamp,
	)
}
