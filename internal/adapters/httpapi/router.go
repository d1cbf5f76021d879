package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// Options configures the admin API
type Options struct {
	// Ledger serves /ledger when set
	Ledger factory.LedgerRepository

	// MetricsPath serves the Prometheus registry when metrics are enabled
	MetricsPath string

	Logger common.ContainerLogger
}

type handlers struct {
	ent      *enterprise.Enterprise
	ledger   factory.LedgerRepository
	validate *validator.Validate
	logger   common.ContainerLogger
}

// NewRouter builds the admin HTTP API
func NewRouter(ent *enterprise.Enterprise, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = common.Discard
	}
	h := &handlers{
		ent:      ent,
		ledger:   opts.Ledger,
		validate: validator.New(),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", h.health)
	r.Get("/snapshot", h.snapshot)
	r.Get("/roster", h.roster)
	r.Get("/ledger", h.ledgerEntries)
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.placeOrder)
		r.Get("/{orderID}", h.getJob)
	})

	if metrics.IsEnabled() {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}
	return r
}

func (h *handlers) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(common.WithLogger(r.Context(), h.logger)))

		h.logger.Log(common.LevelDebug, fmt.Sprintf("[AdminAPI] %s %s", r.Method, r.URL.Path), map[string]interface{}{
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}

// Serve runs an HTTP server on addr until ctx is done
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger := common.LoggerFromContext(ctx)

	errChan := make(chan error, 1)
	go func() {
		logger.Log(common.LevelInfo, fmt.Sprintf("[AdminAPI] Listening on %s", addr), nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("admin API server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
