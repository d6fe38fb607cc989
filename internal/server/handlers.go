package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/SainandaG/badmintion-stringing/internal/agents"
	"github.com/SainandaG/badmintion-stringing/internal/orders"
)

// ContextRequest is the body of POST /orchestrator/context.
type ContextRequest struct {
	Query string `json:"query"`
}

// ChatRequest is the body of POST /orchestrator/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// StatusUpdateRequest is the body of POST /orders/:id/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	health := s.graph.Health(c.Request().Context())

	status := http.StatusOK
	if health.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, HealthResponse{
		Status:  string(health.State),
		Message: health.Message,
	})
}

func (s *Server) handleContext(c echo.Context) error {
	var req ContextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
	}

	result, err := s.knowledge.BuildContext(c.Request().Context(), req.Query)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}

	result, err := s.knowledge.Chat(c.Request().Context(), req.Message)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleAssignAgent(c echo.Context) error {
	orderID := c.Param("order_id")

	order, err := s.orders.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return httpError(c, err)
	}

	assignment, err := s.agents.AssignNearest(c.Request().Context(), orderID, order.PickupPoint())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, assignment)
}

func (s *Server) handleCreateOrder(c echo.Context) error {
	var req orders.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := s.orders.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (s *Server) handleOrdersWithAgents(c echo.Context) error {
	list, err := s.orders.OrdersWithAgents(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleCustomerOrders(c echo.Context) error {
	list, err := s.orders.CustomerOrders(c.Request().Context(), c.Param("name"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleUpdateStatus(c echo.Context) error {
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCreateAgent(c echo.Context) error {
	var agent agents.Agent
	if err := c.Bind(&agent); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.agents.CreateAgent(c.Request().Context(), agent); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, agent)
}

func (s *Server) handleGetAgent(c echo.Context) error {
	agent, err := s.agents.GetAgent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

func (s *Server) handleAgentRoute(c echo.Context) error {
	route, err := s.agents.PlanRoute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, route)
}
