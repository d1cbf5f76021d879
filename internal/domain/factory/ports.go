package factory

import "context"

// EventSink receives notifications raised by domain objects.
// Implementations must not block the caller.
type EventSink interface {
	MachineBroken(event MachineBroken)
	MaterialDepleted(event MaterialDepleted)
	ProductionCompleted(event ProductionCompleted)
}

// LedgerRepository persists budget ledger entries
type LedgerRepository interface {
	Save(ctx context.Context, entry *LedgerEntry) error
	FindAll(ctx context.Context, limit int) ([]*LedgerEntry, error)
}

// noOpSink drops every event; used until a sink is attached
type noOpSink struct{}

func (noOpSink) MachineBroken(MachineBroken)             {}
func (noOpSink) MaterialDepleted(MaterialDepleted)       {}
func (noOpSink) ProductionCompleted(ProductionCompleted) {}
