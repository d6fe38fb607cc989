// Package server provides the HTTP API for the stringing service.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/SainandaG/badmintion-stringing/internal/agents"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/knowledge"
	"github.com/SainandaG/badmintion-stringing/internal/orders"
	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Config holds HTTP server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wires the service layer to HTTP endpoints.
type Server struct {
	echo      *echo.Echo
	knowledge *knowledge.Service
	orders    *orders.Service
	agents    *agents.Service
	graph     graph.GraphClient
	logger    *slog.Logger
	config    Config
}

// New creates the HTTP server and registers all routes.
func New(
	knowledgeSvc *knowledge.Service,
	orderSvc *orders.Service,
	agentSvc *agents.Service,
	graphClient graph.GraphClient,
	logger *slog.Logger,
	cfg Config,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.ReadTimeout > 0 {
		e.Server.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		e.Server.WriteTimeout = cfg.WriteTimeout
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		knowledge: knowledgeSvc,
		orders:    orderSvc,
		agents:    agentSvc,
		graph:     graphClient,
		logger:    logger.With("component", "server"),
		config:    cfg,
	}

	s.registerRoutes()
	return s
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	orch := s.echo.Group("/orchestrator")
	orch.POST("/context", s.handleContext)
	orch.POST("/chat", s.handleChat)
	orch.POST("/assign_agent/:order_id", s.handleAssignAgent)

	s.echo.POST("/orders", s.handleCreateOrder)
	s.echo.GET("/orders", s.handleOrdersWithAgents)
	s.echo.GET("/orders/customer/:name", s.handleCustomerOrders)
	s.echo.POST("/orders/:id/status", s.handleUpdateStatus)

	s.echo.POST("/agents", s.handleCreateAgent)
	s.echo.GET("/agents/:id", s.handleGetAgent)
	s.echo.GET("/agents/:id/route", s.handleAgentRoute)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "addr", s.config.Address)
	return s.echo.Start(s.config.Address)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// httpError converts service errors to HTTP responses, mapping structured
// error codes to status codes.
func httpError(c echo.Context, err error) error {
	var serr *types.StringingError
	if !errors.As(err, &serr) {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	status := http.StatusInternalServerError
	switch serr.Code {
	case types.ORDER_NOT_FOUND, types.AGENT_NOT_FOUND:
		status = http.StatusNotFound
	case types.ORDER_INVALID, types.AGENT_INVALID, types.QUERY_REQUIRED, types.GEOCODE_NOT_FOUND:
		status = http.StatusBadRequest
	case types.GEOCODE_TIMEOUT:
		status = http.StatusGatewayTimeout
	case types.GEOCODE_FAILED:
		status = http.StatusBadGateway
	}

	return c.JSON(status, errorResponse{Error: serr.Message, Code: string(serr.Code)})
}
