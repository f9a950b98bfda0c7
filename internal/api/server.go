// Package api implements the HTTP surface over the coordinator: operator
// lifecycle/configuration routes and the worker-facing dispatch routes
// (§6 "External interfaces").
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crawlctl/coordinator/internal/api/middleware"
	"github.com/crawlctl/coordinator/internal/blob"
	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/health"
	"github.com/crawlctl/coordinator/internal/logger"
	"github.com/crawlctl/coordinator/internal/metadata"
	"github.com/crawlctl/coordinator/internal/metrics"
)

const readHeaderTimeout = 10 * time.Second

// Params bundles the collaborators a Server is built from.
type Params struct {
	Manager      *coordinator.Manager
	Blob         blob.Store
	Metadata     metadata.Store
	Metrics      *metrics.Metrics
	Health       *health.Checker
	Log          logger.Interface
	JWTSecret    string
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// handlers holds the collaborators every route handler closes over.
type handlers struct {
	manager  *coordinator.Manager
	blob     blob.Store
	metadata metadata.Store
	metrics  *metrics.Metrics
	log      logger.Interface
}

// Server wraps the gin router and the underlying net/http.Server.
type Server struct {
	httpServer *http.Server
	log        logger.Interface
}

// NewServer builds the fully-routed HTTP server. It does not start
// listening; call Start.
func NewServer(p Params) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logging(p.Log))
	router.Use(middleware.CORS())

	if p.Health != nil {
		health.RegisterRoutes(router, p.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers{manager: p.Manager, blob: p.Blob, metadata: p.Metadata, metrics: p.Metrics, log: p.Log}

	operator := router.Group("/runs/:runId")
	operator.Use(middleware.JWTAuth(p.JWTSecret))
	operator.POST("/seed", h.seed)
	operator.POST("/configure", h.configure)
	operator.POST("/start", h.start)
	operator.POST("/pause", h.pause)
	operator.POST("/resume", h.resume)
	operator.POST("/cancel", h.cancel)
	operator.POST("/reset", h.reset)
	operator.GET("/stats", h.stats)
	operator.GET("/status", h.status)

	worker := router.Group("/")
	worker.POST("/request-work", h.requestWork)
	worker.POST("/report-result", h.reportResult)
	worker.POST("/on-cron", h.onCron)

	addr := p.Address
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       orDefault(p.ReadTimeout, 30*time.Second),
		WriteTimeout:      orDefault(p.WriteTimeout, 30*time.Second),
		IdleTimeout:       orDefault(p.IdleTimeout, 60*time.Second),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &Server{httpServer: srv, log: p.Log}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Start begins serving and blocks until the listener stops (or errors).
func (s *Server) Start() error {
	s.log.Info("starting http server", logger.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, honoring ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping http server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying router for in-process testing via
// httptest, without going through a real listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
