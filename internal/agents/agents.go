// Package agents manages delivery agents and order assignment.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SainandaG/badmintion-stringing/internal/geo"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/notify"
	"github.com/SainandaG/badmintion-stringing/internal/routing"
	"github.com/SainandaG/badmintion-stringing/internal/types"
)

const (
	labelAgent = "Agent"
	labelOrder = "Order"

	relAssignedTo = "ASSIGNED_TO"
)

// Agent is a delivery agent who picks up and returns rackets.
type Agent struct {
	AgentID string  `json:"agent_id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Active  bool    `json:"active"`
	Score   float64 `json:"score"`
}

// Assignment is the outcome of trying to assign an agent to an order.
// Assigned=false with a nil error means no agent was available, which is a
// normal operating condition.
type Assignment struct {
	Assigned   bool    `json:"assigned"`
	AgentID    string  `json:"agent_id,omitempty"`
	AgentName  string  `json:"agent_name,omitempty"`
	DistanceKm float64 `json:"distance_km,omitempty"`
	EtaMinutes float64 `json:"eta_minutes,omitempty"`
}

// Estimator predicts trip duration in minutes.
type Estimator interface {
	Predict(distanceKm, trafficLevel, agentScore float64) float64
}

// defaultTrafficLevel is assumed when no live traffic feed is wired.
const defaultTrafficLevel = 2

// Service provides agent operations on top of the graph client.
type Service struct {
	client    graph.GraphClient
	notifier  notify.Notifier
	estimator Estimator
	logger    *slog.Logger
}

// NewService creates the agent service. A nil notifier disables SMS and a
// nil estimator disables ETA computation.
func NewService(client graph.GraphClient, notifier notify.Notifier, estimator Estimator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		client:    client,
		notifier:  notifier,
		estimator: estimator,
		logger:    logger.With("component", "agents.service"),
	}
}

// CreateAgent registers or updates an agent, keyed by agent_id.
func (s *Service) CreateAgent(ctx context.Context, agent Agent) error {
	if strings.TrimSpace(agent.AgentID) == "" {
		return types.NewError(types.AGENT_INVALID, "agent_id is required")
	}
	if strings.TrimSpace(agent.Name) == "" {
		return types.NewError(types.AGENT_INVALID, "agent name is required")
	}

	return s.client.UpsertNode(ctx, graph.NodeUpsert{
		Label:    labelAgent,
		KeyField: "agent_id",
		KeyValue: agent.AgentID,
		OnCreate: map[string]any{
			"registered_at": time.Now().UTC().Format(time.RFC3339),
		},
		Set: map[string]any{
			"name":   agent.Name,
			"phone":  agent.Phone,
			"lat":    agent.Lat,
			"lon":    agent.Lon,
			"active": agent.Active,
			"score":  agent.Score,
		},
	})
}

// GetAgent fetches an agent by id.
func (s *Service) GetAgent(ctx context.Context, agentID string) (Agent, error) {
	cypher := `
		MATCH (a:Agent {agent_id: $id})
		RETURN a.agent_id AS agent_id,
		       a.name AS name,
		       a.phone AS phone,
		       a.lat AS lat,
		       a.lon AS lon,
		       a.active AS active,
		       a.score AS score
	`
	result, err := s.client.Query(ctx, cypher, map[string]any{"id": agentID})
	if err != nil {
		return Agent{}, err
	}
	if len(result.Records) == 0 {
		return Agent{}, types.NewError(types.AGENT_NOT_FOUND, fmt.Sprintf("agent %s not found", agentID))
	}

	return agentFromRow(result.Records[0]), nil
}

// AssignNearest picks the active agent closest to the order's pickup point
// and records the assignment. The SMS notification is best-effort and the
// ETA is computed when an estimator is wired.
func (s *Service) AssignNearest(ctx context.Context, orderID string, pickup geo.Point) (Assignment, error) {
	agents, err := s.activeAgents(ctx)
	if err != nil {
		return Assignment{}, err
	}
	if len(agents) == 0 {
		s.logger.Info("no active agents for assignment", "order_id", orderID)
		return Assignment{Assigned: false}, nil
	}

	nearest := agents[0]
	nearestDist := geo.Haversine(pickup, geo.Point{Lat: nearest.Lat, Lon: nearest.Lon})
	for _, candidate := range agents[1:] {
		d := geo.Haversine(pickup, geo.Point{Lat: candidate.Lat, Lon: candidate.Lon})
		if d < nearestDist {
			nearest = candidate
			nearestDist = d
		}
	}

	if err := s.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
		FromLabel: labelAgent, FromKeyField: "agent_id", FromKeyValue: nearest.AgentID,
		ToLabel: labelOrder, ToKeyField: "order_id", ToKeyValue: orderID,
		Type: relAssignedTo,
		OnCreate: map[string]any{
			"assigned_at": time.Now().UTC().Format(time.RFC3339),
			"distance_km": nearestDist,
		},
	}); err != nil {
		return Assignment{}, err
	}

	assignment := Assignment{
		Assigned:   true,
		AgentID:    nearest.AgentID,
		AgentName:  nearest.Name,
		DistanceKm: nearestDist,
	}
	if s.estimator != nil {
		assignment.EtaMinutes = s.estimator.Predict(nearestDist, defaultTrafficLevel, nearest.Score)
	}

	if nearest.Phone != "" {
		msg := fmt.Sprintf("New pickup assigned: order %s, %.1f km away.", orderID, nearestDist)
		if err := s.notifier.Send(ctx, nearest.Phone, msg); err != nil {
			s.logger.Warn("assignment sms failed", "agent_id", nearest.AgentID, "error", err)
		}
	}

	s.logger.Info("agent assigned",
		"order_id", orderID,
		"agent_id", nearest.AgentID,
		"distance_km", nearestDist)
	return assignment, nil
}

// RouteStop is one pickup on a planned route.
type RouteStop struct {
	OrderID    string  `json:"order_id"`
	Address    string  `json:"address,omitempty"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

// Route is an ordered pickup plan for one agent.
type Route struct {
	AgentID string      `json:"agent_id"`
	Stops   []RouteStop `json:"stops"`
	TotalKm float64     `json:"total_km"`
}

// PlanRoute computes a distance-minimizing visit order over the agent's
// open assignments, starting from the agent's current position.
func (s *Service) PlanRoute(ctx context.Context, agentID string) (Route, error) {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return Route{}, err
	}

	cypher := `
		MATCH (a:Agent {agent_id: $id})-[:ASSIGNED_TO]->(o:Order)
		WHERE o.status IN ['pending', 'picked_up']
		RETURN o.order_id AS order_id,
		       o.address AS address,
		       o.lat AS lat,
		       o.lon AS lon
	`
	result, err := s.client.Query(ctx, cypher, map[string]any{"id": agentID})
	if err != nil {
		return Route{}, err
	}

	route := Route{AgentID: agentID}
	if len(result.Records) == 0 {
		return route, nil
	}

	// Index 0 is the agent's own position.
	points := make([]geo.Point, 0, len(result.Records)+1)
	points = append(points, geo.Point{Lat: agent.Lat, Lon: agent.Lon})

	stops := make([]RouteStop, 0, len(result.Records))
	for _, row := range result.Records {
		stop := RouteStop{}
		stop.OrderID, _ = row["order_id"].(string)
		stop.Address, _ = row["address"].(string)
		stop.Lat, _ = row["lat"].(float64)
		stop.Lon, _ = row["lon"].(float64)
		stops = append(stops, stop)
		points = append(points, geo.Point{Lat: stop.Lat, Lon: stop.Lon})
	}

	order := routing.ShortestRoute(points)
	prev := points[0]
	for _, idx := range order[1:] {
		stop := stops[idx-1]
		stop.DistanceKm = geo.Haversine(prev, points[idx])
		route.Stops = append(route.Stops, stop)
		route.TotalKm += stop.DistanceKm
		prev = points[idx]
	}

	return route, nil
}

func (s *Service) activeAgents(ctx context.Context) ([]Agent, error) {
	cypher := `
		MATCH (a:Agent)
		WHERE a.active = true AND a.lat IS NOT NULL AND a.lon IS NOT NULL
		RETURN a.agent_id AS agent_id,
		       a.name AS name,
		       a.phone AS phone,
		       a.lat AS lat,
		       a.lon AS lon,
		       a.active AS active,
		       a.score AS score
	`
	result, err := s.client.Query(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	agents := make([]Agent, 0, len(result.Records))
	for _, row := range result.Records {
		agents = append(agents, agentFromRow(row))
	}
	return agents, nil
}

func agentFromRow(row map[string]any) Agent {
	var a Agent
	a.AgentID, _ = row["agent_id"].(string)
	a.Name, _ = row["name"].(string)
	a.Phone, _ = row["phone"].(string)
	a.Lat, _ = row["lat"].(float64)
	a.Lon, _ = row["lon"].(float64)
	a.Active, _ = row["active"].(bool)
	a.Score, _ = row["score"].(float64)
	return a
}
