package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	calculatehandler "github.com/de-tools/tco-atlas/pkg/handlers/calculate"
	cataloghandler "github.com/de-tools/tco-atlas/pkg/handlers/catalog"
	"github.com/de-tools/tco-atlas/pkg/handlers/health"
	priceshandler "github.com/de-tools/tco-atlas/pkg/handlers/prices"
	"github.com/de-tools/tco-atlas/pkg/metrics"
	tcomiddleware "github.com/de-tools/tco-atlas/pkg/server/middleware"
	"github.com/de-tools/tco-atlas/pkg/services/calculator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router    *chi.Mux
	logger    *zerolog.Logger
	server    *http.Server
	scheduler Scheduler
	timeout   time.Duration
}

// Scheduler is a background job tied to the server lifetime.
type Scheduler interface {
	Start()
	Stop(ctx context.Context) error
}

type Dependencies struct {
	Logger     zerolog.Logger
	Calculator calculator.Calculator
	Catalogs   []cataloghandler.Source
	// Syncer is optional. The prices routes are mounted only when it is set.
	Syncer    priceshandler.Syncer
	Scheduler Scheduler
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	calcHandler := calculatehandler.NewHandler(deps.Calculator)
	catalogHandler := cataloghandler.NewHandler(deps.Catalogs...)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(tcomiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)
	router.Use(tcomiddleware.Metrics)
	router.Use(tcomiddleware.CORS(config.CORSOrigins))

	router.Get("/", health.Status)
	router.Post("/calculate", calcHandler.Calculate)
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/calculate", calcHandler.Calculate)
		r.Get("/targets", calcHandler.ListTargets)
		r.Get("/catalogs", catalogHandler.ListProviders)
		r.Get("/catalogs/{provider}", catalogHandler.GetCatalog)

		if deps.Syncer != nil {
			pricesHandler := priceshandler.NewHandler(deps.Syncer)
			r.Post("/prices/sync", pricesHandler.Sync)
			r.Get("/prices/runs", pricesHandler.ListRuns)
		}
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:    router,
		logger:    &logger,
		scheduler: config.Dependencies.Scheduler,
		timeout:   timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until SIGINT or SIGTERM.
func (w *WebAPI) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

// Run serves until ctx is cancelled, then drains outstanding requests and
// stops the scheduler within the shutdown timeout.
func (w *WebAPI) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	if w.scheduler != nil {
		w.scheduler.Start()
	}

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		w.stopScheduler()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}
	w.stopSchedulerWithin(shutdownCtx)

	return err
}

func (w *WebAPI) stopScheduler() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.stopSchedulerWithin(ctx)
}

func (w *WebAPI) stopSchedulerWithin(ctx context.Context) {
	if w.scheduler == nil {
		return
	}
	if err := w.scheduler.Stop(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("price refresher did not stop in time")
	}
}
