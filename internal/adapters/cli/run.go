package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/andrescamacho/furniture-factory/internal/adapters/export"
	factorygrpc "github.com/andrescamacho/furniture-factory/internal/adapters/grpc"
	"github.com/andrescamacho/furniture-factory/internal/adapters/httpapi"
	"github.com/andrescamacho/furniture-factory/internal/adapters/logging"
	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/adapters/persistence"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/application/orders"
	"github.com/andrescamacho/furniture-factory/internal/application/production"
	"github.com/andrescamacho/furniture-factory/internal/application/supervision"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/config"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/database"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command, which hosts the factory daemon
func NewRunCommand() *cobra.Command {
	var restore bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the factory daemon",
		Long: `Start the factory: staff, machines and the order generator run until
the target budget is reached, the daemon receives SIGINT/SIGTERM, or a
client calls stop.

With --restore the latest saved snapshot is loaded instead of the
configured roster.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("socket") {
				cfg.Daemon.SocketPath = socketPath
			}

			pid := pidfile.New(cfg.Daemon.PIDFile)
			if err := pid.Acquire(); err != nil {
				return err
			}
			defer pid.Release()

			return runDaemon(cfg, restore)
		},
	}

	cmd.Flags().BoolVar(&restore, "restore", false, "Resume from the latest saved snapshot")

	return cmd
}

func runDaemon(cfg *config.Config, restore bool) error {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	clock := shared.NewRealClock()
	ledgerRepo := persistence.NewGormLedgerRepository(db)
	snapshotRepo := persistence.NewGormSnapshotRepository(db)

	logger, logOut, err := buildLogger(cfg.Logging, db, clock)
	if err != nil {
		return err
	}
	defer logOut.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(common.WithLogger(ctx, logger))
	defer cancel()

	ent, err := buildEnterprise(ctx, cfg, restore, snapshotRepo,
		enterprise.WithClock(clock),
		enterprise.WithLedgerRepository(ledgerRepo),
	)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		stopMetrics, err := startMetrics(ctx, ent, cfg.Metrics.PollInterval)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	workshop := production.NewWorkshop(ent, production.Options{
		Backoff:   cfg.Factory.Backoff,
		TimeScale: cfg.Factory.TimeScale,
		Clock:     clock,
	})
	repairs := supervision.NewRepairShop(cfg.Factory.TimeScale, clock)
	supervisor := supervision.NewSupervisor(ent, workshop, repairs, supervision.Options{
		Backoff:         cfg.Factory.Backoff,
		RestockQuantity: cfg.Factory.RestockQuantity,
		TargetBudget:    decimal.NewFromFloat(cfg.Factory.TargetBudget),
		Clock:           clock,
	})

	listener, err := factorygrpc.ListenUnix(cfg.Daemon.SocketPath)
	if err != nil {
		return err
	}
	server := factorygrpc.NewServer(listener, factorygrpc.NewFactoryService(ent, cancel), logger)

	var targetReached atomic.Bool
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return supervisor.Run(gctx)
	})

	g.Go(func() error {
		select {
		case <-supervisor.Ready():
		case <-gctx.Done():
			return nil
		}
		if n := ent.ReplayPending(); n > 0 {
			logger.Log(common.LevelInfo, fmt.Sprintf("[Daemon] Replayed %d pending orders", n), nil)
		}
		if cfg.Generator.Disabled {
			return nil
		}
		gen := orders.NewGenerator(ent, orders.Options{
			BatchSize:   cfg.Generator.BatchSize,
			Interval:    cfg.Generator.Interval,
			JitterMin:   cfg.Generator.JitterMin,
			JitterMax:   cfg.Generator.JitterMax,
			MaxQuantity: cfg.Generator.MaxQuantity,
			Seed:        cfg.Generator.Seed,
			Clock:       clock,
		})
		return gen.Run(gctx, 0)
	})

	g.Go(func() error {
		select {
		case <-supervisor.TargetReached():
			targetReached.Store(true)
			logger.Log(common.LevelInfo, "[Daemon] Target budget reached, shutting down", map[string]interface{}{
				"budget": ent.CurrentBudget().String(),
			})
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		return server.Serve(gctx)
	})

	if cfg.Daemon.HTTPAddress != "" {
		router := httpapi.NewRouter(ent, httpapi.Options{
			Ledger:      ledgerRepo,
			MetricsPath: cfg.Metrics.Path,
			Logger:      logger,
		})
		g.Go(func() error {
			return httpapi.Serve(gctx, cfg.Daemon.HTTPAddress, router, cfg.Daemon.ShutdownTimeout)
		})
	}

	logger.Log(common.LevelInfo, "[Daemon] Factory running", map[string]interface{}{
		"budget": ent.CurrentBudget().String(),
		"socket": cfg.Daemon.SocketPath,
		"pid":    os.Getpid(),
	})

	runErr := g.Wait()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	return errors.Join(runErr, finish(cfg, ent, snapshotRepo, logger, targetReached.Load()))
}

// finish saves the closing snapshot and, once the target was reached,
// writes the roster export
func finish(cfg *config.Config, ent *enterprise.Enterprise, snapshots enterprise.SnapshotRepository, logger common.ContainerLogger, targetReached bool) error {
	snap := ent.Snapshot()
	var errs []error

	if cfg.Daemon.SnapshotOnExit || targetReached {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
		defer cancel()
		id, err := snapshots.Save(ctx, snap)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save snapshot: %w", err))
		} else {
			logger.Log(common.LevelInfo, "[Daemon] Snapshot saved", map[string]interface{}{"snapshot_id": id})
		}
	}

	if targetReached {
		formats := make([]export.Format, 0, len(cfg.Daemon.ExportFormats))
		for _, f := range cfg.Daemon.ExportFormats {
			format, err := export.ParseFormat(f)
			if err != nil {
				return errors.Join(append(errs, err)...)
			}
			formats = append(formats, format)
		}
		paths, err := export.WriteFiles(cfg.Daemon.ExportDir, export.FromSnapshot(snap), formats)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to export roster: %w", err))
		} else {
			logger.Log(common.LevelInfo, fmt.Sprintf("[Daemon] Roster exported to %s", strings.Join(paths, ", ")), nil)
		}
	}

	logger.Log(common.LevelInfo, "[Daemon] Stopped", map[string]interface{}{
		"budget": snap.Budget.Current.String(),
	})
	return errors.Join(errs...)
}

func buildLogger(cfg config.LoggingConfig, db *gorm.DB, clock shared.Clock) (*logging.Logger, io.Closer, error) {
	out, err := logging.OpenOutput(cfg.Output, cfg.FilePath)
	if err != nil {
		return nil, nil, err
	}

	opts := logging.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: out,
	}
	if cfg.Persist {
		opts.Store = persistence.NewGormLogRepository(db, clock)
	}

	logger, err := logging.New(opts)
	if err != nil {
		out.Close()
		return nil, nil, err
	}
	return logger, out, nil
}

func buildEnterprise(ctx context.Context, cfg *config.Config, restore bool, snapshots enterprise.SnapshotRepository, opts ...enterprise.Option) (*enterprise.Enterprise, error) {
	logger := common.LoggerFromContext(ctx)

	if restore {
		snap, err := snapshots.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		if snap != nil {
			ent, err := enterprise.Restore(ctx, *snap, opts...)
			if err != nil {
				return nil, fmt.Errorf("failed to restore snapshot %s: %w", snap.ID, err)
			}
			logger.Log(common.LevelInfo, "[Daemon] Restored snapshot", map[string]interface{}{
				"snapshot_id":    snap.ID,
				"taken_at":       snap.TakenAt.Format(time.RFC3339),
				"pending_orders": len(snap.PendingOrders),
			})
			return ent, nil
		}
		logger.Log(common.LevelWarn, "[Daemon] No snapshot saved yet, starting from config", nil)
	}

	roster, err := rosterFromConfig(cfg.Factory)
	if err != nil {
		return nil, err
	}
	ent := enterprise.New(ctx, decimal.NewFromFloat(cfg.Factory.StartingBudget), opts...)
	if err := ent.Seed(roster); err != nil {
		return nil, fmt.Errorf("failed to seed factory: %w", err)
	}
	return ent, nil
}

func rosterFromConfig(cfg config.FactoryConfig) (enterprise.Roster, error) {
	roster := enterprise.Roster{
		Manager:      cfg.Manager,
		Carpenters:   cfg.Carpenters,
		Repairmen:    cfg.Repairmen,
		RawMaterials: make(map[factory.MaterialKind]int, len(cfg.RawMaterials)),
	}
	for _, m := range cfg.Machines {
		roster.Machines = append(roster.Machines, enterprise.MachineSpec{
			ID:            m.ID,
			MaxDurability: m.MaxDurability,
			RepairTime:    m.RepairTime,
		})
	}
	for name, qty := range cfg.RawMaterials {
		kind, err := factory.ParseMaterialKind(name)
		if err != nil {
			return enterprise.Roster{}, err
		}
		roster.RawMaterials[kind] += qty
	}
	return roster, nil
}

func startMetrics(ctx context.Context, ent *enterprise.Enterprise, interval time.Duration) (func(), error) {
	metrics.InitRegistry()

	floor := metrics.NewProductionMetricsCollector(func() metrics.FloorState {
		return floorState(ent)
	})
	if err := floor.Register(); err != nil {
		return nil, fmt.Errorf("failed to register production metrics: %w", err)
	}
	budget := metrics.NewFinancialMetricsCollector(func() metrics.BudgetState {
		b := ent.Budget()
		return metrics.BudgetState{
			Starting: b.Starting().InexactFloat64(),
			Income:   b.Income().InexactFloat64(),
			Expenses: b.Expenses().InexactFloat64(),
			Current:  b.Current().InexactFloat64(),
		}
	})
	if err := budget.Register(); err != nil {
		return nil, fmt.Errorf("failed to register financial metrics: %w", err)
	}

	metrics.SetGlobalProductionCollector(floor)
	metrics.SetGlobalFinancialCollector(budget)
	floor.Start(ctx, interval)
	budget.Start(ctx, interval)

	return func() {
		floor.Stop()
		budget.Stop()
	}, nil
}

func floorState(ent *enterprise.Enterprise) metrics.FloorState {
	wh := ent.Warehouse()
	state := metrics.FloorState{
		PendingOrders: len(ent.PendingOrders()),
		RawMaterials:  make(map[string]int),
		Finished:      make(map[string]int),
		BusyByRole:    make(map[string]int),
	}
	for kind, qty := range wh.RawMaterials() {
		state.RawMaterials[string(kind)] = qty
	}
	for product, qty := range wh.FinishedProducts() {
		state.Finished[product.String()] = qty
	}
	for _, m := range ent.Machines() {
		s := m.State()
		state.Machines = append(state.Machines, metrics.MachineGauge{
			ID:         s.ID,
			Durability: s.Durability,
			Broken:     s.Broken,
			Occupied:   s.Occupied,
		})
	}
	for _, e := range ent.Employees() {
		if e.IsBusy() {
			state.BusyByRole[string(e.Role())]++
		}
	}
	return state
}
