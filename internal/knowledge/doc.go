// Package knowledge maintains the long-term knowledge graph behind the chat
// assistant and assembles retrieval-augmented context from it.
//
// The package has three parts:
//
//   - Writer: idempotently upserts query/issue/brand/timeframe nodes and
//     their weighted relationships, incrementing frequency counters.
//   - Retriever: traverses the graph across five relationship patterns and
//     assembles a bounded, ordered natural-language context string.
//   - Service: composes extraction, classification, writer, and retriever
//     into the orchestration contract used by the HTTP layer, and owns the
//     degradation policy (knowledge persistence and retrieval are always
//     best-effort and never fail the response).
package knowledge
