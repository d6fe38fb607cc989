package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SainandaG/badmintion-stringing/internal/extraction"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// HistorySearcher is the last-resort context source: a plain substring
// search over historical order records, distinct from the knowledge graph.
type HistorySearcher interface {
	SearchHistory(ctx context.Context, term string, limit int) ([]string, error)
}

// Responder renders a chat response from a message and its retrieved
// context. The production responder calls an external language model; the
// default implementation is template-based.
type Responder interface {
	Respond(ctx context.Context, message string, res ContextResult) (string, error)
}

const historyFallbackLimit = 3

// Service composes extraction, classification, knowledge writes, and context
// retrieval into the orchestration contract. All degradation policy lives
// here: writer and retriever failures are logged and absorbed, and callers
// always receive a well-formed result.
type Service struct {
	writer    *Writer
	retriever *Retriever
	history   HistorySearcher
	responder Responder
	logger    *slog.Logger
}

// ServiceOption configures optional collaborators of a Service.
type ServiceOption func(*Service)

// WithHistorySearcher wires the order-history fallback source.
func WithHistorySearcher(h HistorySearcher) ServiceOption {
	return func(s *Service) { s.history = h }
}

// WithResponder replaces the default template responder.
func WithResponder(r Responder) ServiceOption {
	return func(s *Service) { s.responder = r }
}

// NewService creates the knowledge service on the given graph client.
func NewService(client graph.GraphClient, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		writer:    NewWriter(client, logger),
		retriever: NewRetriever(client, logger),
		responder: TemplateResponder{},
		logger:    logger.With("component", "knowledge.service"),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildContext runs the full context pipeline for a raw query.
//
// Extraction and classification are pure and always succeed. When the
// classifier declines, the graph is never touched and RAGUsed is false.
// When it accepts, the writer runs best-effort, then the retriever; the
// order-history fallback is consulted only when the graph yielded nothing
// and the query carried a brand or issue signal.
func (s *Service) BuildContext(ctx context.Context, query string) (ContextResult, error) {
	if strings.TrimSpace(query) == "" {
		return ContextResult{}, types.NewError(types.QUERY_REQUIRED, "query text is required")
	}

	entities := extraction.Extract(query)
	result := ContextResult{
		Entities: entities,
		Keywords: extraction.Keywords(query),
	}

	if !extraction.ShouldUseContext(entities) {
		return result, nil
	}
	result.RAGUsed = true

	if err := s.writer.Record(ctx, query, entities); err != nil {
		s.logger.Warn("knowledge write degraded", "error", err)
	}

	contextText, err := s.retriever.Retrieve(ctx, entities)
	if err != nil {
		s.logger.Warn("context retrieval degraded", "error", err)
	}

	if contextText == "" && (entities.HasIssue() || entities.HasBrand()) {
		contextText = s.historyFallback(ctx, entities)
	}

	result.Context = contextText
	return result, nil
}

// Chat answers a customer message, recording its entities as a side effect.
func (s *Service) Chat(ctx context.Context, message string) (ChatResult, error) {
	contextResult, err := s.BuildContext(ctx, message)
	if err != nil {
		return ChatResult{}, err
	}

	response, err := s.responder.Respond(ctx, message, contextResult)
	if err != nil {
		s.logger.Warn("responder failed, using fallback response", "error", err)
		response = "Thanks for reaching out. Our team will get back to you on this shortly."
	}

	return ChatResult{
		Response: response,
		Entities: contextResult.Entities,
	}, nil
}

// historyFallback searches past order records for the strongest detected
// signal. Failures degrade to no context, same as the graph path.
func (s *Service) historyFallback(ctx context.Context, e extraction.Entities) string {
	if s.history == nil {
		return ""
	}

	term := e.Brand
	if e.HasIssue() {
		// The issue code's leading word ("string", "frame", "tension")
		// matches the free text customers put on orders.
		term = strings.SplitN(e.IssueType, "_", 2)[0]
	}

	records, err := s.history.SearchHistory(ctx, term, historyFallbackLimit)
	if err != nil {
		s.logger.Warn("order history fallback failed", "term", term, "error", err)
		return ""
	}
	if len(records) == 0 {
		return ""
	}

	return fmt.Sprintf("Similar past service orders:\n%s", strings.Join(records, "\n"))
}

// TemplateResponder renders chat responses without an external model.
type TemplateResponder struct{}

// Respond builds a category-appropriate reply, prefixed with whatever
// historical context was retrieved.
func (TemplateResponder) Respond(_ context.Context, _ string, res ContextResult) (string, error) {
	var b strings.Builder

	if res.Context != "" {
		b.WriteString("Here is what we know from past service records:\n")
		b.WriteString(res.Context)
		b.WriteString("\n\n")
	}

	switch res.Entities.Category {
	case extraction.CategoryIssueInquiry:
		b.WriteString("That sounds like something our stringing team should look at. ")
		b.WriteString("You can place a repair order and we will pick the racket up.")
	case extraction.CategoryServiceInfo:
		b.WriteString("Restringing is typically done within 2 business days. ")
		b.WriteString("Pricing depends on string choice and tension; pickup is free within the city.")
	case extraction.CategoryRecommendation:
		b.WriteString("Happy to recommend options. Durability and repair history above ")
		b.WriteString("should help compare; our stringers can also advise during pickup.")
	case extraction.CategoryCasual:
		b.WriteString("Hello! How can we help with your racket today?")
	default:
		b.WriteString("Could you tell us a bit more about your racket or the problem you are seeing?")
	}

	return b.String(), nil
}
