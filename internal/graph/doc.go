// Package graph provides the graph database client abstraction for the
// stringing service knowledge base.
//
// The package follows an interface-based design:
//
//   - GraphClient: core interface defining graph database operations
//   - Neo4jClient: production implementation using the Neo4j Go driver
//   - MockGraphClient: in-memory implementation for unit testing
//   - TracedClient: OpenTelemetry tracing decorator for any GraphClient
//
// All Cypher sent through this package is parameterized; labels, property
// keys, and relationship types come from fixed application vocabularies and
// are validated as identifiers before interpolation.
package graph
