package graph

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Neo4jClient implements GraphClient for Neo4j graph databases.
// It provides connection pooling, automatic connect retries, and health
// monitoring.
type Neo4jClient struct {
	config Config
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config Config) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Neo4jClient{
		config: config,
	}, nil
}

// Connect establishes a connection to the Neo4j database.
// Uses exponential backoff for connection retries.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
		// Encryption is controlled by the URI scheme (bolt:// vs neo4j+s://).
	}

	var driver neo4j.DriverWithContext
	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error
		driver, err = neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				return nil
			}
		}

		lastErr = err

		if ctx.Err() != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}

		// Backoff delay: baseDelay * 2^attempt, capped at the connection timeout.
		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	return types.WrapError(ErrCodeGraphConnectionFailed,
		fmt.Sprintf("failed to connect after %d attempts", maxRetries), lastErr)
}

// Close releases all resources and closes the database connection.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	if err := c.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed,
			"failed to close driver", err)
	}

	c.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}

	return types.Healthy("connected to Neo4j")
}

// Query executes a Cypher query in a read transaction.
func (c *Neo4jClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	if c.driver == nil {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed,
			"driver not connected")
	}

	startTime := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return runAndCollect(ctx, tx, cypher, params)
	})

	if err != nil {
		return QueryResult{}, types.WrapError(ErrCodeGraphQueryFailed,
			"query execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// Write executes a Cypher query in a write transaction.
func (c *Neo4jClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	if c.driver == nil {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed,
			"driver not connected")
	}

	startTime := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return runAndCollect(ctx, tx, cypher, params)
	})

	if err != nil {
		return QueryResult{}, types.WrapError(ErrCodeGraphWriteFailed,
			"write execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// UpsertNode creates or updates a single node by unique key using MERGE.
// Counter increments happen inside the statement so concurrent upserts never
// lose updates to read-modify-write races in application code.
func (c *Neo4jClient) UpsertNode(ctx context.Context, n NodeUpsert) error {
	if err := n.Validate(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE (n:%s {%s: $key})\n", n.Label, n.KeyField)
	b.WriteString("ON CREATE SET n += $on_create\n")
	b.WriteString("ON MATCH SET n += $on_match")
	for _, p := range n.Increment {
		fmt.Fprintf(&b, ", n.%s = coalesce(n.%s, 0) + 1", p, p)
	}
	b.WriteString("\nSET n += $set")

	params := map[string]any{
		"key":       n.KeyValue,
		"on_create": orEmpty(n.OnCreate),
		"on_match":  orEmpty(n.OnMatch),
		"set":       orEmpty(n.Set),
	}

	if _, err := c.Write(ctx, b.String(), params); err != nil {
		return types.WrapError(ErrCodeGraphNodeUpsertFailed,
			fmt.Sprintf("failed to upsert %s node", n.Label), err)
	}

	return nil
}

// UpsertRelationship creates or updates a directed relationship between two
// existing nodes matched by key. When either endpoint is missing, MATCH finds
// no rows and the statement is a safe no-op.
func (c *Neo4jClient) UpsertRelationship(ctx context.Context, r RelationshipUpsert) error {
	if err := r.Validate(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (a:%s {%s: $from_key})\n", r.FromLabel, r.FromKeyField)
	fmt.Fprintf(&b, "MATCH (b:%s {%s: $to_key})\n", r.ToLabel, r.ToKeyField)
	fmt.Fprintf(&b, "MERGE (a)-[r:%s]->(b)\n", r.Type)
	b.WriteString("ON CREATE SET r += $on_create\n")
	b.WriteString("ON MATCH SET r += $on_match")
	for _, p := range r.Increment {
		fmt.Fprintf(&b, ", r.%s = coalesce(r.%s, 0) + 1", p, p)
	}
	b.WriteString("\nSET r += $set")

	params := map[string]any{
		"from_key":  r.FromKeyValue,
		"to_key":    r.ToKeyValue,
		"on_create": orEmpty(r.OnCreate),
		"on_match":  orEmpty(r.OnMatch),
		"set":       orEmpty(r.Set),
	}

	if _, err := c.Write(ctx, b.String(), params); err != nil {
		return types.WrapError(ErrCodeGraphRelationshipUpsertFailed,
			fmt.Sprintf("failed to upsert %s relationship", r.Type), err)
	}

	return nil
}

// runAndCollect executes a query inside a managed transaction and converts
// the driver records into a QueryResult.
func runAndCollect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) (any, error) {
	neoResult, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	records, err := neoResult.Collect(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := neoResult.Consume(ctx)
	if err != nil {
		return nil, err
	}

	return convertNeo4jResult(records, summary), nil
}

// convertNeo4jResult converts Neo4j records and summary to our QueryResult format.
func convertNeo4jResult(records []*neo4j.Record, summary neo4j.ResultSummary) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}

	if len(records) > 0 {
		result.Columns = records[0].Keys
	}

	for _, record := range records {
		recordMap := make(map[string]any)
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	if summary != nil && summary.Counters() != nil {
		counters := summary.Counters()
		result.Summary = QuerySummary{
			NodesCreated:         counters.NodesCreated(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			PropertiesSet:        counters.PropertiesSet(),
		}
	}

	return result
}

// orEmpty substitutes an empty map for nil so `+=` never sees a null parameter.
func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
