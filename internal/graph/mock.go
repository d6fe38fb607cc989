package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method    string
	Args      []interface{}
	Timestamp time.Time
}

// MockGraphClient is an in-memory implementation of GraphClient for testing.
// Upserts honor MERGE ON CREATE / ON MATCH semantics including counter
// increments, reads return configurable queued results, and all method calls
// are recorded for verification.
type MockGraphClient struct {
	mu sync.RWMutex

	connected     bool
	healthStatus  types.HealthStatus
	nodes         map[string]map[string]any
	relationships map[string]map[string]any
	calls         []MockCall

	// Configurable responses
	queryResults []QueryResult
	queryErr     error
	writeErr     error
	upsertErr    error
	connectErr   error
}

// NewMockGraphClient creates a new mock graph client for testing.
func NewMockGraphClient() *MockGraphClient {
	return &MockGraphClient{
		healthStatus:  types.Healthy("mock graph client"),
		nodes:         make(map[string]map[string]any),
		relationships: make(map[string]map[string]any),
	}
}

func nodeKey(label string, keyValue any) string {
	return fmt.Sprintf("%s|%v", label, keyValue)
}

func relKey(fromLabel string, fromKey any, relType, toLabel string, toKey any) string {
	return fmt.Sprintf("%s|%v|%s|%s|%v", fromLabel, fromKey, relType, toLabel, toKey)
}

func (m *MockGraphClient) record(method string, args ...interface{}) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Args:      args,
		Timestamp: time.Now(),
	})
}

// Connect records the call and simulates connection.
func (m *MockGraphClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect")
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockGraphClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Close")
	m.connected = false
	return nil
}

// Health records the call and returns the configured health status.
func (m *MockGraphClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Health")
	return m.healthStatus
}

// Query records the call and returns the next queued result, or an empty
// result when the queue is exhausted.
func (m *MockGraphClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Query", cypher, params)

	if m.queryErr != nil {
		return QueryResult{}, m.queryErr
	}

	if len(m.queryResults) == 0 {
		return QueryResult{Records: []map[string]any{}}, nil
	}

	next := m.queryResults[0]
	m.queryResults = m.queryResults[1:]
	return next, nil
}

// Write records the call; the mock does not interpret raw write Cypher.
func (m *MockGraphClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Write", cypher, params)

	if m.writeErr != nil {
		return QueryResult{}, m.writeErr
	}
	return QueryResult{Records: []map[string]any{}}, nil
}

// UpsertNode applies MERGE semantics against the in-memory node map.
func (m *MockGraphClient) UpsertNode(ctx context.Context, n NodeUpsert) error {
	if err := n.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("UpsertNode", n)

	if m.upsertErr != nil {
		return m.upsertErr
	}

	key := nodeKey(n.Label, n.KeyValue)
	props, exists := m.nodes[key]
	if !exists {
		props = map[string]any{n.KeyField: n.KeyValue}
		applyProps(props, n.OnCreate)
	} else {
		applyProps(props, n.OnMatch)
		for _, p := range n.Increment {
			props[p] = asInt64(props[p]) + 1
		}
	}
	applyProps(props, n.Set)
	m.nodes[key] = props

	return nil
}

// UpsertRelationship applies MERGE semantics against the in-memory
// relationship map. Missing endpoints make the call a no-op, matching the
// MATCH-then-MERGE statement shape used by the real client.
func (m *MockGraphClient) UpsertRelationship(ctx context.Context, r RelationshipUpsert) error {
	if err := r.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("UpsertRelationship", r)

	if m.upsertErr != nil {
		return m.upsertErr
	}

	if _, ok := m.nodes[nodeKey(r.FromLabel, r.FromKeyValue)]; !ok {
		return nil
	}
	if _, ok := m.nodes[nodeKey(r.ToLabel, r.ToKeyValue)]; !ok {
		return nil
	}

	key := relKey(r.FromLabel, r.FromKeyValue, r.Type, r.ToLabel, r.ToKeyValue)
	props, exists := m.relationships[key]
	if !exists {
		props = map[string]any{}
		applyProps(props, r.OnCreate)
	} else {
		applyProps(props, r.OnMatch)
		for _, p := range r.Increment {
			props[p] = asInt64(props[p]) + 1
		}
	}
	applyProps(props, r.Set)
	m.relationships[key] = props

	return nil
}

// Node returns a copy of the stored node properties, if present.
func (m *MockGraphClient) Node(label string, keyValue any) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	props, ok := m.nodes[nodeKey(label, keyValue)]
	if !ok {
		return nil, false
	}
	return copyProps(props), true
}

// Relationship returns a copy of the stored relationship properties, if present.
func (m *MockGraphClient) Relationship(fromLabel string, fromKey any, relType, toLabel string, toKey any) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	props, ok := m.relationships[relKey(fromLabel, fromKey, relType, toLabel, toKey)]
	if !ok {
		return nil, false
	}
	return copyProps(props), true
}

// NodeCount returns the number of stored nodes with the given label.
func (m *MockGraphClient) NodeCount(label string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	prefix := label + "|"
	for key := range m.nodes {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			count++
		}
	}
	return count
}

// Calls returns a copy of all recorded calls.
func (m *MockGraphClient) Calls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the number of recorded calls to the given method.
func (m *MockGraphClient) CallsTo(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, call := range m.calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// QueueQueryResult appends a result to the read-query queue. Results are
// consumed in FIFO order, one per Query call.
func (m *MockGraphClient) QueueQueryResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryResults = append(m.queryResults, result)
}

// SetQueryError makes all subsequent Query calls fail with err.
func (m *MockGraphClient) SetQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

// SetWriteError makes all subsequent Write calls fail with err.
func (m *MockGraphClient) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetUpsertError makes all subsequent upsert calls fail with err.
func (m *MockGraphClient) SetUpsertError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
}

// SetConnectError makes subsequent Connect calls fail with err.
func (m *MockGraphClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectErr = err
}

// SetHealthStatus overrides the status returned by Health.
func (m *MockGraphClient) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

func applyProps(dst map[string]any, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

func copyProps(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
