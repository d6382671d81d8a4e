package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/pvsizer/internal/controllers/restserver"
	"github.com/chrissnell/pvsizer/internal/log"
	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/internal/sizing"
	"github.com/chrissnell/pvsizer/pkg/config"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
	"github.com/chrissnell/pvsizer/pkg/solar"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Dependencies builds the solver, site and readings source described by
// the configuration. A missing readings section is not an error; the
// returned Readings is nil in that case and the caller owns closing it
// otherwise.
func (a *App) Dependencies() (*config.ConfigData, restserver.Dependencies, error) {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return nil, restserver.Dependencies{}, fmt.Errorf("error loading configuration: %w", err)
	}

	params, model, err := sizing.ModuleFromConfig(cfg.Module)
	if err != nil {
		return nil, restserver.Dependencies{}, fmt.Errorf("invalid module configuration: %w", err)
	}
	a.logger.Infow("module configured",
		"model", model,
		"isc", params.ShortCircuitCurrent(),
		"voc", params.OpenCircuitVoltage(),
		"cells", params.CellsInSeries())

	deps := restserver.Dependencies{
		Solver: singlediode.NewSolver(params),
		Model:  model,
		Site: solar.Site{
			Latitude:       cfg.Site.Latitude,
			Longitude:      cfg.Site.Longitude,
			Altitude:       cfg.Site.Altitude,
			Meridian:       cfg.Site.Meridian,
			DaylightSaving: cfg.Site.DaylightSaving,
		},
		Orientation: solar.Orientation{Tilt: cfg.Site.Tilt, Azimuth: cfg.Site.Azimuth},
		Optimizer:   cfg.Optimizer,
	}

	src, err := readings.Open(cfg.Readings, a.logger)
	switch {
	case errors.Is(err, readings.ErrNoSource):
		a.logger.Info("no readings source configured")
	case err != nil:
		return nil, restserver.Dependencies{}, fmt.Errorf("error opening readings: %w", err)
	default:
		deps.Readings = src
	}

	return cfg, deps, nil
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, deps, err := a.Dependencies()
	if err != nil {
		return err
	}
	if deps.Readings != nil {
		defer deps.Readings.Close()
	}

	rest, err := restserver.NewController(ctx, &wg, cfg.REST, deps, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
