package factory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry
type EntryKind string

const (
	EntryIncome  EntryKind = "INCOME"
	EntryExpense EntryKind = "EXPENSE"
)

func (k EntryKind) IsValid() bool {
	return k == EntryIncome || k == EntryExpense
}

// LedgerEntry is an immutable record of one budget mutation
type LedgerEntry struct {
	id            string
	kind          EntryKind
	amount        decimal.Decimal
	balanceBefore decimal.Decimal
	balanceAfter  decimal.Decimal
	description   string
	timestamp     time.Time
}

func newLedgerEntry(kind EntryKind, amount, before, after decimal.Decimal, description string, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		id:            uuid.New().String(),
		kind:          kind,
		amount:        amount,
		balanceBefore: before,
		balanceAfter:  after,
		description:   description,
		timestamp:     at,
	}
}

// ReconstructLedgerEntry rebuilds an entry loaded from storage
func ReconstructLedgerEntry(id string, kind EntryKind, amount, before, after decimal.Decimal, description string, at time.Time) (*LedgerEntry, error) {
	if id == "" {
		return nil, &ErrInvalidArgument{Field: "entry id", Reason: "cannot be empty"}
	}
	if !kind.IsValid() {
		return nil, &ErrInvalidArgument{Field: "entry kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	return &LedgerEntry{
		id:            id,
		kind:          kind,
		amount:        amount,
		balanceBefore: before,
		balanceAfter:  after,
		description:   description,
		timestamp:     at,
	}, nil
}

func (e *LedgerEntry) ID() string                     { return e.id }
func (e *LedgerEntry) Kind() EntryKind                { return e.kind }
func (e *LedgerEntry) Amount() decimal.Decimal        { return e.amount }
func (e *LedgerEntry) BalanceBefore() decimal.Decimal { return e.balanceBefore }
func (e *LedgerEntry) BalanceAfter() decimal.Decimal  { return e.balanceAfter }
func (e *LedgerEntry) Description() string            { return e.description }
func (e *LedgerEntry) Timestamp() time.Time           { return e.timestamp }
