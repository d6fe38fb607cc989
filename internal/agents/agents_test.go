package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SainandaG/badmintion-stringing/internal/geo"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/types"
)

type stubNotifier struct {
	sent []string
	to   []string
	err  error
}

func (s *stubNotifier) Send(_ context.Context, to, message string) error {
	s.to = append(s.to, to)
	s.sent = append(s.sent, message)
	return s.err
}

type fixedEstimator struct{ minutes float64 }

func (f fixedEstimator) Predict(float64, float64, float64) float64 { return f.minutes }

func agentRow(id, name, phone string, lat, lon, score float64) map[string]any {
	return map[string]any{
		"agent_id": id,
		"name":     name,
		"phone":    phone,
		"lat":      lat,
		"lon":      lon,
		"active":   true,
		"score":    score,
	}
}

func TestCreateAgentUpserts(t *testing.T) {
	mock := graph.NewMockGraphClient()
	svc := NewService(mock, nil, nil, nil)

	require.NoError(t, svc.CreateAgent(context.Background(), Agent{
		AgentID: "agent-1",
		Name:    "Ravi",
		Phone:   "+911234",
		Lat:     12.97,
		Lon:     77.59,
		Active:  true,
		Score:   4.5,
	}))

	node, ok := mock.Node("Agent", "agent-1")
	require.True(t, ok)
	assert.Equal(t, "Ravi", node["name"])
	assert.Equal(t, true, node["active"])
	assert.Equal(t, 4.5, node["score"])
	assert.NotEmpty(t, node["registered_at"])
}

func TestCreateAgentValidation(t *testing.T) {
	svc := NewService(graph.NewMockGraphClient(), nil, nil, nil)

	assert.Error(t, svc.CreateAgent(context.Background(), Agent{Name: "Ravi"}))
	assert.Error(t, svc.CreateAgent(context.Background(), Agent{AgentID: "agent-1"}))
}

func TestGetAgentNotFound(t *testing.T) {
	svc := NewService(graph.NewMockGraphClient(), nil, nil, nil)

	_, err := svc.GetAgent(context.Background(), "ghost")
	require.Error(t, err)

	var serr *types.StringingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, types.AGENT_NOT_FOUND, serr.Code)
}

func TestGetAgentMapsRow(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		agentRow("agent-1", "Ravi", "+911234", 12.97, 77.59, 4.5),
	}})

	svc := NewService(mock, nil, nil, nil)
	agent, err := svc.GetAgent(context.Background(), "agent-1")
	require.NoError(t, err)

	assert.Equal(t, "Ravi", agent.Name)
	assert.True(t, agent.Active)
	assert.InDelta(t, 77.59, agent.Lon, 1e-9)
}

func TestAssignNearestNoAgentsIsNormal(t *testing.T) {
	mock := graph.NewMockGraphClient()
	svc := NewService(mock, nil, nil, nil)

	assignment, err := svc.AssignNearest(context.Background(), "order-1", geo.Point{Lat: 12.97, Lon: 77.59})
	require.NoError(t, err)
	assert.False(t, assignment.Assigned)
}

func TestAssignNearestPicksClosestAgent(t *testing.T) {
	mock := graph.NewMockGraphClient()
	// Seed the endpoints so the assignment edge can be created.
	require.NoError(t, mock.UpsertNode(context.Background(), graph.NodeUpsert{
		Label: "Agent", KeyField: "agent_id", KeyValue: "agent-near",
	}))
	require.NoError(t, mock.UpsertNode(context.Background(), graph.NodeUpsert{
		Label: "Order", KeyField: "order_id", KeyValue: "order-1",
	}))

	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		agentRow("agent-far", "Far", "+91far", 13.30, 77.90, 3),
		agentRow("agent-near", "Ravi", "+91near", 12.98, 77.60, 4.5),
	}})

	notifier := &stubNotifier{}
	svc := NewService(mock, notifier, fixedEstimator{minutes: 17}, nil)

	assignment, err := svc.AssignNearest(context.Background(), "order-1", geo.Point{Lat: 12.97, Lon: 77.59})
	require.NoError(t, err)

	assert.True(t, assignment.Assigned)
	assert.Equal(t, "agent-near", assignment.AgentID)
	assert.Equal(t, "Ravi", assignment.AgentName)
	assert.Greater(t, assignment.DistanceKm, 0.0)
	assert.Equal(t, 17.0, assignment.EtaMinutes)

	rel, ok := mock.Relationship("Agent", "agent-near", "ASSIGNED_TO", "Order", "order-1")
	require.True(t, ok)
	assert.NotEmpty(t, rel["assigned_at"])

	require.Len(t, notifier.to, 1)
	assert.Equal(t, "+91near", notifier.to[0])
	assert.Contains(t, notifier.sent[0], "order-1")
}

func TestPlanRouteOrdersStopsByDistance(t *testing.T) {
	mock := graph.NewMockGraphClient()
	// Agent lookup, then assigned-order lookup.
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		agentRow("agent-1", "Ravi", "+911234", 0, 0, 4),
	}})
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		{"order_id": "o-far", "address": "far", "lat": 0.0, "lon": 0.3},
		{"order_id": "o-near", "address": "near", "lat": 0.0, "lon": 0.1},
		{"order_id": "o-mid", "address": "mid", "lat": 0.0, "lon": 0.2},
	}})

	svc := NewService(mock, nil, nil, nil)
	route, err := svc.PlanRoute(context.Background(), "agent-1")
	require.NoError(t, err)

	require.Len(t, route.Stops, 3)
	assert.Equal(t, "o-near", route.Stops[0].OrderID)
	assert.Equal(t, "o-mid", route.Stops[1].OrderID)
	assert.Equal(t, "o-far", route.Stops[2].OrderID)
	assert.Greater(t, route.TotalKm, 0.0)
}

func TestPlanRouteNoAssignments(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		agentRow("agent-1", "Ravi", "+911234", 12.97, 77.59, 4),
	}})

	svc := NewService(mock, nil, nil, nil)
	route, err := svc.PlanRoute(context.Background(), "agent-1")
	require.NoError(t, err)
	assert.Empty(t, route.Stops)
	assert.Zero(t, route.TotalKm)
}

func TestAssignNearestSMSFailureIsBestEffort(t *testing.T) {
	mock := graph.NewMockGraphClient()
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		agentRow("agent-1", "Ravi", "+911234", 12.98, 77.60, 4),
	}})

	notifier := &stubNotifier{err: errors.New("twilio down")}
	svc := NewService(mock, notifier, nil, nil)

	assignment, err := svc.AssignNearest(context.Background(), "order-1", geo.Point{Lat: 12.97, Lon: 77.59})
	require.NoError(t, err)
	assert.True(t, assignment.Assigned)
}
