package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SainandaG/badmintion-stringing/internal/agents"
	"github.com/SainandaG/badmintion-stringing/internal/geo"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/knowledge"
	"github.com/SainandaG/badmintion-stringing/internal/orders"
	"github.com/SainandaG/badmintion-stringing/internal/types"
)

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, string) (geo.Location, error) {
	return geo.Location{
		Lat:         12.9716,
		Lon:         77.5946,
		City:        "Bengaluru",
		DisplayName: "MG Road, Bengaluru, Karnataka, 560001, India",
	}, nil
}

func testServer(t *testing.T) (*Server, *graph.MockGraphClient) {
	t.Helper()
	mock := graph.NewMockGraphClient()

	srv := New(
		knowledge.NewService(mock, nil),
		orders.NewService(mock, stubGeocoder{}, nil),
		agents.NewService(mock, nil, nil, nil),
		mock,
		nil,
		Config{},
	)
	return srv, mock
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, mock := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)

	mock.SetHealthStatus(types.Unhealthy("connection lost"))
	rec = doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthDegradedStillServes(t *testing.T) {
	srv, mock := testServer(t)
	mock.SetHealthStatus(types.Degraded("slow writes"))

	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "slow writes", health.Message)
}

func TestContextEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orchestrator/context",
		`{"query":"Why does my Yonex string break after 2 weeks?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body knowledge.ContextResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.RAGUsed)
	assert.Equal(t, "Yonex", body.Entities.Brand)
	assert.Equal(t, "string_damage", body.Entities.IssueType)
	assert.NotEmpty(t, body.Keywords)
}

func TestContextEndpointEmptyQuery(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orchestrator/context", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/orchestrator/context", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orchestrator/chat", `{"message":"hello there"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body knowledge.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Hello! How can we help with your racket today?", body.Response)

	rec = doJSON(t, srv, http.MethodPost, "/orchestrator/chat", `{"message":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv, mock := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orders",
		`{"customer":"Asha","issue":"string snapped","address":"MG Road, Bengaluru"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "Bengaluru", order.City)

	_, ok := mock.Node("Order", order.ID.String())
	assert.True(t, ok)
}

func TestCreateOrderEndpointValidation(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orders", `{"customer":"Asha"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ORDER_INVALID", body.Code)
}

func TestCustomerOrdersEndpoint(t *testing.T) {
	srv, mock := testServer(t)
	id := types.NewID()
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		{"order_id": id.String(), "issue": "restring", "status": "pending"},
	}})

	rec := doJSON(t, srv, http.MethodGet, "/orders/customer/Asha", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Customer)
}

func TestUpdateStatusEndpointNotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orders/"+types.NewID().String()+"/status",
		`{"status":"picked_up"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssignAgentEndpoint(t *testing.T) {
	srv, mock := testServer(t)
	orderID := types.NewID().String()

	// Order lookup, then active-agent lookup.
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		{"order_id": orderID, "customer": "Asha", "lat": 12.97, "lon": 77.59, "status": "pending"},
	}})
	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		{"agent_id": "agent-1", "name": "Ravi", "lat": 12.98, "lon": 77.60, "active": true, "score": 4.0},
	}})

	rec := doJSON(t, srv, http.MethodPost, "/orchestrator/assign_agent/"+orderID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var assignment agents.Assignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assignment))
	assert.True(t, assignment.Assigned)
	assert.Equal(t, "agent-1", assignment.AgentID)
}

func TestAssignAgentEndpointOrderNotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/orchestrator/assign_agent/"+types.NewID().String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAgentEndpoints(t *testing.T) {
	srv, mock := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/agents",
		`{"agent_id":"agent-1","name":"Ravi","lat":12.98,"lon":77.60,"active":true,"score":4.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	_, ok := mock.Node("Agent", "agent-1")
	assert.True(t, ok)

	mock.QueueQueryResult(graph.QueryResult{Records: []map[string]any{
		{"agent_id": "agent-1", "name": "Ravi", "active": true, "score": 4.5},
	}})
	rec = doJSON(t, srv, http.MethodGet, "/agents/agent-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var agent agents.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agent))
	assert.Equal(t, "Ravi", agent.Name)

	rec = doJSON(t, srv, http.MethodGet, "/agents/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
