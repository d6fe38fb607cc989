package graph

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// GraphClient provides an interface for graph database operations.
// Implementations must be thread-safe for concurrent access.
type GraphClient interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	Close(ctx context.Context) error

	// Health returns the current health status of the graph database connection.
	Health(ctx context.Context) types.HealthStatus

	// Query executes a Cypher read query with the given parameters.
	Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// Write executes a Cypher write query with the given parameters.
	Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// UpsertNode creates or updates a single node matched by a unique key.
	// Create-if-absent-else-update: OnCreate fields apply only at creation,
	// OnMatch fields only on an existing node, Set fields in both cases, and
	// Increment counters are bumped atomically inside the MERGE statement.
	UpsertNode(ctx context.Context, n NodeUpsert) error

	// UpsertRelationship creates or updates a directed relationship between
	// two existing nodes matched by key, with the same create/match/increment
	// semantics as UpsertNode. The endpoints must already exist; if either is
	// missing the upsert is a no-op.
	UpsertRelationship(ctx context.Context, r RelationshipUpsert) error
}

// NodeUpsert describes an idempotent create-or-update of a node by unique key.
type NodeUpsert struct {
	Label    string
	KeyField string
	KeyValue any

	OnCreate  map[string]any // properties set only when the node is created
	OnMatch   map[string]any // properties set only when the node already exists
	Set       map[string]any // properties set in both cases
	Increment []string       // counter properties bumped by one on match
}

// Validate checks the upsert for a usable label and key.
func (n NodeUpsert) Validate() error {
	if err := validIdentifier(n.Label); err != nil {
		return types.WrapError(ErrCodeGraphInvalidQuery, "invalid node label", err)
	}
	if err := validIdentifier(n.KeyField); err != nil {
		return types.WrapError(ErrCodeGraphInvalidQuery, "invalid node key field", err)
	}
	for _, p := range n.Increment {
		if err := validIdentifier(p); err != nil {
			return types.WrapError(ErrCodeGraphInvalidQuery, "invalid increment property", err)
		}
	}
	return nil
}

// RelationshipUpsert describes an idempotent create-or-update of a directed
// relationship between two nodes matched by unique key.
type RelationshipUpsert struct {
	FromLabel    string
	FromKeyField string
	FromKeyValue any

	ToLabel    string
	ToKeyField string
	ToKeyValue any

	Type string

	OnCreate  map[string]any
	OnMatch   map[string]any
	Set       map[string]any
	Increment []string
}

// Validate checks the upsert for usable labels, keys, and relationship type.
func (r RelationshipUpsert) Validate() error {
	for _, id := range []string{r.FromLabel, r.FromKeyField, r.ToLabel, r.ToKeyField, r.Type} {
		if err := validIdentifier(id); err != nil {
			return types.WrapError(ErrCodeGraphInvalidQuery, "invalid relationship identifier", err)
		}
	}
	for _, p := range r.Increment {
		if err := validIdentifier(p); err != nil {
			return types.WrapError(ErrCodeGraphInvalidQuery, "invalid increment property", err)
		}
	}
	return nil
}

// QueryResult represents the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	// Summary contains metadata about the query execution.
	Summary QuerySummary
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime        time.Duration
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
}

// Config holds connection settings for a graph database client.
type Config struct {
	URI                     string
	Username                string
	Password                string
	Database                string
	MaxConnectionPoolSize   int
	ConnectionTimeout       time.Duration
	MaxTransactionRetryTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Database:                "neo4j",
		MaxConnectionPoolSize:   25,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 15 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI is required")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "username is required")
	}
	if c.MaxConnectionPoolSize <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "connection pool size must be positive")
	}
	return nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdentifier restricts labels, property keys, and relationship types to
// plain identifiers so they are safe to interpolate into Cypher text.
// Values always travel as bound parameters.
func validIdentifier(s string) error {
	if !identifierRe.MatchString(s) {
		return fmt.Errorf("%q is not a valid identifier", s)
	}
	return nil
}
