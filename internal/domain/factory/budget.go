package factory

import (
	"sync"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Budget is the factory's money ledger.
//
// Invariant: Current() == starting + income - expenses, and income and
// expenses only ever grow.
type Budget struct {
	mu       sync.Mutex
	starting decimal.Decimal
	income   decimal.Decimal
	expenses decimal.Decimal
	clock    shared.Clock
}

// NewBudget creates a budget with no income or expenses yet
func NewBudget(starting decimal.Decimal, clock shared.Clock) *Budget {
	return ReconstructBudget(starting, decimal.Zero, decimal.Zero, clock)
}

// ReconstructBudget restores a budget from saved totals
func ReconstructBudget(starting, income, expenses decimal.Decimal, clock shared.Clock) *Budget {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Budget{starting: starting, income: income, expenses: expenses, clock: clock}
}

func (b *Budget) current() decimal.Decimal {
	return b.starting.Add(b.income).Sub(b.expenses)
}

// Current returns starting + income - expenses
func (b *Budget) Current() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

func (b *Budget) Starting() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.starting
}

func (b *Budget) Income() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.income
}

func (b *Budget) Expenses() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expenses
}

// AddIncome records a non-negative income
func (b *Budget) AddIncome(amount decimal.Decimal, description string) (*LedgerEntry, error) {
	if amount.IsNegative() {
		return nil, &ErrNegativeAmount{Operation: "income", Amount: amount.String()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	before := b.current()
	b.income = b.income.Add(amount)
	return newLedgerEntry(EntryIncome, amount, before, b.current(), description, b.clock.Now()), nil
}

// AddExpense records a non-negative expense. The balance may go below zero.
func (b *Budget) AddExpense(amount decimal.Decimal, description string) (*LedgerEntry, error) {
	if amount.IsNegative() {
		return nil, &ErrNegativeAmount{Operation: "expense", Amount: amount.String()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.spendUnsafe(amount, description), nil
}

// TrySpend records the expense only if the current balance covers it.
// Returns nil entry and false when it does not.
func (b *Budget) TrySpend(amount decimal.Decimal, description string) (*LedgerEntry, bool, error) {
	if amount.IsNegative() {
		return nil, false, &ErrNegativeAmount{Operation: "expense", Amount: amount.String()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current().LessThan(amount) {
		return nil, false, nil
	}
	return b.spendUnsafe(amount, description), true, nil
}

func (b *Budget) spendUnsafe(amount decimal.Decimal, description string) *LedgerEntry {
	before := b.current()
	b.expenses = b.expenses.Add(amount)
	return newLedgerEntry(EntryExpense, amount, before, b.current(), description, b.clock.Now())
}
