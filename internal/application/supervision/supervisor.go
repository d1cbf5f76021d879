package supervision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/application/events"
	"github.com/andrescamacho/furniture-factory/internal/application/production"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// DefaultRestockQuantity is how many units a depletion restock buys
const DefaultRestockQuantity = 100

// Options tunes a Supervisor
type Options struct {
	// Backoff between polls for an idle employee
	Backoff time.Duration
	// RestockQuantity is bought per depletion
	RestockQuantity int
	// TargetBudget closes TargetReached once the budget reaches it; zero disables
	TargetBudget decimal.Decimal
	Clock        shared.Clock
}

// Supervisor is the manager's reactor. Each received event is handled in
// its own goroutine; handlers race freely and never hold a lock while
// backing off.
type Supervisor struct {
	enterprise *enterprise.Enterprise
	workshop   *production.Workshop
	repairs    *RepairShop
	opts       Options

	inflight    sync.WaitGroup
	targetOnce  sync.Once
	targetReach chan struct{}
	readyOnce   sync.Once
	ready       chan struct{}
}

// NewSupervisor creates a supervisor for e
func NewSupervisor(e *enterprise.Enterprise, workshop *production.Workshop, repairs *RepairShop, opts Options) *Supervisor {
	if opts.Backoff <= 0 {
		opts.Backoff = production.DefaultBackoff
	}
	if opts.RestockQuantity <= 0 {
		opts.RestockQuantity = DefaultRestockQuantity
	}
	if opts.Clock == nil {
		opts.Clock = e.Clock()
	}
	return &Supervisor{
		enterprise:  e,
		workshop:    workshop,
		repairs:     repairs,
		opts:        opts,
		targetReach: make(chan struct{}),
		ready:       make(chan struct{}),
	}
}

// TargetReached is closed once the budget reaches the configured target
func (s *Supervisor) TargetReached() <-chan struct{} {
	return s.targetReach
}

// Ready is closed once Run has subscribed to every topic
func (s *Supervisor) Ready() <-chan struct{} {
	return s.ready
}

// Run subscribes to the four notification classes and dispatches them
// until ctx is done, then waits for in-flight handlers to return.
func (s *Supervisor) Run(ctx context.Context) error {
	bus := s.enterprise.Events()
	var pumps sync.WaitGroup

	orders, unsubOrders := bus.Orders().Subscribe()
	breakdowns, unsubBreakdowns := bus.Breakdowns().Subscribe()
	depletions, unsubDepletions := bus.Depletions().Subscribe()
	completions, unsubCompletions := bus.Completions().Subscribe()
	defer func() {
		unsubOrders()
		unsubBreakdowns()
		unsubDepletions()
		unsubCompletions()
	}()

	s.readyOnce.Do(func() { close(s.ready) })

	pumps.Add(4)
	go func() { defer pumps.Done(); pump(ctx, s, orders, s.HandleOrderReceived) }()
	go func() { defer pumps.Done(); pump(ctx, s, breakdowns, s.HandleMachineBroken) }()
	go func() { defer pumps.Done(); pump(ctx, s, depletions, s.HandleMaterialDepleted) }()
	go func() { defer pumps.Done(); pump(ctx, s, completions, s.HandleProductionCompleted) }()

	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelInfo, "[Supervisor] Listening for factory events", nil)

	pumps.Wait()
	s.inflight.Wait()
	logger.Log(common.LevelInfo, "[Supervisor] Stopped", nil)
	return nil
}

func pump[T any](ctx context.Context, s *Supervisor, mb *events.Mailbox[T], handle func(context.Context, T)) {
	for {
		event, ok, err := mb.Next(ctx)
		if err != nil || !ok {
			return
		}
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			handle(ctx, event)
		}()
	}
}

// managerOnDuty reports whether a manager is registered to act on events
func (s *Supervisor) managerOnDuty(ctx context.Context, event string) bool {
	if _, ok := s.enterprise.Manager(); ok {
		return true
	}
	common.LoggerFromContext(ctx).Log(common.LevelWarn, fmt.Sprintf("[Supervisor] No manager registered, ignoring %s", event), nil)
	return false
}

// HandleOrderReceived dequeues the oldest order, waits for an idle
// carpenter and has it produce the whole order.
func (s *Supervisor) HandleOrderReceived(ctx context.Context, _ factory.OrderReceived) {
	if !s.managerOnDuty(ctx, "order") {
		return
	}
	logger := common.LoggerFromContext(ctx)

	order, err := s.enterprise.DequeueOrder()
	if err != nil {
		logger.Log(common.LevelWarn, fmt.Sprintf("[Supervisor] Nothing to dispatch: %v", err), nil)
		return
	}

	emp, err := s.claim(ctx, factory.RoleCarpenter)
	if err != nil {
		s.enterprise.ReturnOrder(order)
		return
	}
	carpenter, ok := emp.(*factory.Carpenter)
	if !ok {
		emp.MarkIdle()
		s.enterprise.ReturnOrder(order)
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] %s is not a carpenter", emp.ID()), nil)
		return
	}

	job, tracked := s.enterprise.Job(order.ID())
	if tracked {
		s.transition(logger, order.ID(), "assign", job.Assign(carpenter.ID()))
	}
	logger.Log(common.LevelInfo, fmt.Sprintf("[Supervisor] Assigned %s to %s", order, carpenter.ID()), map[string]interface{}{
		"order_id":  order.ID(),
		"carpenter": carpenter.ID(),
	})

	err = s.workshop.Produce(ctx, carpenter, order)
	if !tracked {
		return
	}
	switch {
	case err == nil:
		s.transition(logger, order.ID(), "complete", job.Complete())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.transition(logger, order.ID(), "cancel", job.Cancel())
	default:
		s.transition(logger, order.ID(), "fail", job.Fail(err))
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Order %s failed: %v", order.ID(), err), map[string]interface{}{
			"order_id": order.ID(),
			"error":    err.Error(),
		})
	}
}

// transition logs a job lifecycle change the job refused
func (s *Supervisor) transition(logger common.ContainerLogger, orderID, action string, err error) {
	if err == nil {
		return
	}
	logger.Log(common.LevelDebug, fmt.Sprintf("[Supervisor] Job %s: cannot %s: %v", orderID, action, err), map[string]interface{}{
		"order_id": orderID,
		"action":   action,
		"error":    err.Error(),
	})
}

// HandleMachineBroken waits for an idle repairman and has it fix the machine
func (s *Supervisor) HandleMachineBroken(ctx context.Context, event factory.MachineBroken) {
	if !s.managerOnDuty(ctx, "machine breakdown") || event.Machine == nil {
		return
	}
	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelWarn, fmt.Sprintf("[Supervisor] Machine %s broke down", event.Machine.ID()), nil)

	emp, err := s.claim(ctx, factory.RoleRepairman)
	if err != nil {
		return
	}
	repairman, ok := emp.(*factory.Repairman)
	if !ok {
		emp.MarkIdle()
		return
	}

	if err := s.repairs.Repair(ctx, repairman, event.Machine); err != nil {
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Repair of %s failed: %v", event.Machine.ID(), err), nil)
	}
}

// HandleMaterialDepleted buys a restock if the budget covers it
func (s *Supervisor) HandleMaterialDepleted(ctx context.Context, event factory.MaterialDepleted) {
	warehouse := s.enterprise.Warehouse()
	if !s.managerOnDuty(ctx, "material depletion") {
		warehouse.RearmShortage(event.Material)
		return
	}
	logger := common.LoggerFromContext(ctx)

	cost, err := factory.RestockCost(event.Material, s.opts.RestockQuantity)
	if err != nil {
		warehouse.RearmShortage(event.Material)
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Cannot price restock of %s: %v", event.Material, err), nil)
		return
	}

	description := fmt.Sprintf("restock %d %s", s.opts.RestockQuantity, event.Material)
	spent, err := s.enterprise.TrySpend(ctx, cost, description)
	if err != nil {
		warehouse.RearmShortage(event.Material)
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Restock of %s failed: %v", event.Material, err), nil)
		return
	}
	if !spent {
		metrics.RecordRestock(string(event.Material), false)
		warehouse.RearmShortage(event.Material)
		logger.Log(common.LevelWarn, fmt.Sprintf("[Supervisor] Not enough budget to restock %s (cost %s, budget %s)",
			event.Material, cost.StringFixed(2), s.enterprise.CurrentBudget().StringFixed(2)), map[string]interface{}{
			"material": string(event.Material),
			"cost":     cost.String(),
		})
		return
	}

	if err := warehouse.AddRawMaterial(event.Material, s.opts.RestockQuantity); err != nil {
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Failed to stock %s: %v", event.Material, err), nil)
		return
	}
	metrics.RecordRestock(string(event.Material), true)
	logger.Log(common.LevelInfo, fmt.Sprintf("[Supervisor] Restocked %d %s for %s", s.opts.RestockQuantity, event.Material, cost.StringFixed(2)), nil)
}

// HandleProductionCompleted ships the finished goods and books the income
func (s *Supervisor) HandleProductionCompleted(ctx context.Context, event factory.ProductionCompleted) {
	if !s.managerOnDuty(ctx, "production completion") || event.Order == nil {
		return
	}
	logger := common.LoggerFromContext(ctx)
	order := event.Order

	if err := s.enterprise.Warehouse().RemoveFinishedProduct(order.Product(), order.Quantity()); err != nil {
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Cannot ship order %s: %v", order.ID(), err), nil)
		return
	}
	if err := s.enterprise.AddIncome(ctx, order.TotalPrice(), "order "+order.ID()); err != nil {
		logger.Log(common.LevelError, fmt.Sprintf("[Supervisor] Cannot book income for %s: %v", order.ID(), err), nil)
		return
	}
	metrics.RecordOrderCompleted(string(order.Furniture()), string(order.Material()))
	logger.Log(common.LevelInfo, fmt.Sprintf("[Supervisor] Shipped %s, budget %s", order, s.enterprise.CurrentBudget().StringFixed(2)), nil)

	s.checkTarget()
}

func (s *Supervisor) checkTarget() {
	if s.opts.TargetBudget.IsZero() {
		return
	}
	if s.enterprise.CurrentBudget().GreaterThanOrEqual(s.opts.TargetBudget) {
		s.targetOnce.Do(func() { close(s.targetReach) })
	}
}

// claim polls for an idle employee of role, woken early by any release
func (s *Supervisor) claim(ctx context.Context, role factory.Role) (factory.Employee, error) {
	for {
		released := s.enterprise.EmployeeReleased()
		if emp, ok := s.enterprise.ClaimAvailable(role); ok {
			return emp, nil
		}
		metrics.RecordBackoff(string(role))
		select {
		case <-s.opts.Clock.After(s.opts.Backoff):
		case <-released:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
