package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/pvsizer/internal/log"
	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/pkg/config"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
	"github.com/chrissnell/pvsizer/pkg/solar"
)

// Dependencies are the shared components the handlers work with
type Dependencies struct {
	Solver      *singlediode.Solver
	Model       string
	Site        solar.Site
	Orientation solar.Orientation
	// Readings may be nil, in which case /sizing is unavailable and
	// /optimize falls back to clear-sky irradiance.
	Readings  readings.Source
	Optimizer config.OptimizerData
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	deps       Dependencies
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, deps Dependencies, logger *zap.SugaredLogger) (*Controller, error) {
	if deps.Solver == nil {
		return nil, fmt.Errorf("REST server requires a module solver")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		deps:       deps,
		logger:     logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Infof("rest.listen_addr not provided; defaulting to %s (all interfaces)", config.DefaultListenAddr)
		rc.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultPort)
		rc.Port = config.DefaultPort
	}

	if deps.Readings == nil {
		logger.Info("no readings source configured; /sizing is disabled and /optimize uses clear-sky irradiance")
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the router, for embedding or testing
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestMiddleware)

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/module", c.handlers.GetModule).Methods(http.MethodGet)
	router.HandleFunc("/curve", c.handlers.PostCurve).Methods(http.MethodPost)
	router.HandleFunc("/curve.csv", c.handlers.GetCurveCSV).Methods(http.MethodGet)
	router.HandleFunc("/curve.png", c.handlers.GetCurvePNG).Methods(http.MethodGet)
	router.HandleFunc("/sizing", c.handlers.GetSizing).Methods(http.MethodGet)
	router.HandleFunc("/optimize", c.handlers.PostOptimize).Methods(http.MethodPost)
	router.HandleFunc("/acpower", c.handlers.PostACPower).Methods(http.MethodPost)
	router.HandleFunc("/payback", c.handlers.PostPayback).Methods(http.MethodPost)

	return router
}
