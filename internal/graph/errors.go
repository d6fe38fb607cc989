package graph

import "github.com/SainandaG/badmintion-stringing/internal/types"

// Graph database error codes
const (
	// Connection errors
	ErrCodeGraphConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeGraphConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeGraphInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Query errors
	ErrCodeGraphQueryFailed  types.ErrorCode = "GRAPH_QUERY_FAILED"
	ErrCodeGraphWriteFailed  types.ErrorCode = "GRAPH_WRITE_FAILED"
	ErrCodeGraphInvalidQuery types.ErrorCode = "GRAPH_INVALID_QUERY"

	// Upsert errors
	ErrCodeGraphNodeUpsertFailed         types.ErrorCode = "GRAPH_NODE_UPSERT_FAILED"
	ErrCodeGraphRelationshipUpsertFailed types.ErrorCode = "GRAPH_RELATIONSHIP_UPSERT_FAILED"
)
