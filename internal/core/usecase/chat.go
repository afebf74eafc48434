package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
	"github.com/antonkh/ontology-assistant/internal/core/ports"
)

// ChatUseCase wraps query processing with answer generation, chat history
// and event publishing. History and events are optional collaborators;
// their failures never fail the chat call.
type ChatUseCase struct {
	processor    ports.QueryProcessor
	generator    ports.AnswerGenerator
	suggester    ports.SuggestionProvider
	store        ports.ConversationStore
	publisher    ports.EventPublisher
	historyLimit int
	logger       *slog.Logger
}

func NewChatUseCase(
	processor ports.QueryProcessor,
	generator ports.AnswerGenerator,
	suggester ports.SuggestionProvider,
	store ports.ConversationStore,
	publisher ports.EventPublisher,
	historyLimit int,
	logger *slog.Logger,
) *ChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		processor:    processor,
		generator:    generator,
		suggester:    suggester,
		store:        store,
		publisher:    publisher,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	start := time.Now()

	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("empty message"))
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}

	uc.ensureConversation(ctx, req)
	history := uc.conversationContext(ctx, req)

	queryResult, err := uc.processor.Process(ctx, req.Message, req.Options)
	if err != nil {
		return nil, fmt.Errorf("process query: %w", err)
	}

	response := uc.respond(ctx, req.Message, queryResult, history)

	result := &domain.ChatResult{
		ConversationID: req.ConversationID,
		UserMessage:    req.Message,
		Response:       response,
		Classification: queryResult.Classification,
		Concepts:       queryResult.Concepts,
		Methods:        queryResult.Methods,
		EntityCount:    len(queryResult.SemanticHits),
	}
	if req.IncludeContext {
		result.ContextUsed = queryResult.Context
	}

	uc.persistTurn(ctx, req, queryResult, response)
	uc.publishEvent(ctx, req, queryResult, time.Since(start))
	return result, nil
}

func (uc *ChatUseCase) Suggestions(_ context.Context, partial string) ([]string, error) {
	if uc.suggester == nil {
		return nil, nil
	}
	return uc.suggester.Suggestions(partial), nil
}

func (uc *ChatUseCase) respond(ctx context.Context, message string, queryResult *domain.QueryResult, history string) string {
	if uc.generator != nil {
		generatorContext := queryResult.Context
		if history != "" {
			generatorContext = history + "\n" + generatorContext
		}
		answer, err := uc.generator.GenerateAnswer(ctx, message, generatorContext, queryResult.Classification.Primary)
		if err == nil && strings.TrimSpace(answer) != "" {
			return answer
		}
		if err != nil {
			uc.logger.Warn("answer_generation_failed", "error", err)
		}
	}
	return fallbackResponse(queryResult)
}

// fallbackResponse keeps the chat usable when answer generation is down:
// the chain answer first, then a short entity digest, then an apology.
func fallbackResponse(queryResult *domain.QueryResult) string {
	if queryResult.ChainResult != nil && queryResult.ChainResult.OK() {
		return queryResult.ChainResult.Answer
	}

	if len(queryResult.SemanticHits) > 0 {
		hits := queryResult.SemanticHits
		if len(hits) > 3 {
			hits = hits[:3]
		}
		parts := []string{fmt.Sprintf("I found %d relevant entities in the knowledge graph:", len(hits))}
		for i, hit := range hits {
			parts = append(parts, fmt.Sprintf("%d. %s (%s)", i+1, hit.LocalName, hit.EntityType))
			if len(hit.Comments) > 0 {
				parts = append(parts, fmt.Sprintf("   %s", hit.Comments[0]))
			}
		}
		return strings.Join(parts, "\n")
	}

	if len(queryResult.DirectResults) > 0 {
		return "I found information using SPARQL queries. Please check the detailed results."
	}
	return "I couldn't find specific information about your query in the knowledge graph."
}

// conversationContext renders recent turns for the answer prompt so that
// follow-up questions can refer back to earlier ones. Empty when history
// is disabled, missing or unavailable.
func (uc *ChatUseCase) conversationContext(ctx context.Context, req domain.ChatRequest) string {
	if uc.store == nil || uc.historyLimit <= 0 {
		return ""
	}
	messages, err := uc.store.ListRecentMessages(ctx, req.UserID, req.ConversationID, uc.historyLimit)
	if err != nil {
		uc.logger.Warn("load_history_failed", "conversation_id", req.ConversationID, "error", err)
		return ""
	}
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("=== RECENT CONVERSATION ===\n")
	for _, msg := range messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

func (uc *ChatUseCase) ensureConversation(ctx context.Context, req domain.ChatRequest) {
	if uc.store == nil {
		return
	}
	if _, err := uc.store.EnsureConversation(ctx, req.UserID, req.ConversationID); err != nil {
		uc.logger.Warn("ensure_conversation_failed", "conversation_id", req.ConversationID, "error", err)
	}
}

func (uc *ChatUseCase) persistTurn(ctx context.Context, req domain.ChatRequest, queryResult *domain.QueryResult, response string) {
	if uc.store == nil {
		return
	}
	now := time.Now().UTC()
	intent := string(queryResult.Classification.Primary)

	userMsg := domain.ConversationMessage{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Role:           "user",
		Content:        req.Message,
		Intent:         intent,
		CreatedAt:      now,
	}
	if err := uc.store.AppendMessage(ctx, userMsg); err != nil {
		uc.logger.Warn("persist_user_message_failed", "error", err)
		return
	}

	assistantMsg := domain.ConversationMessage{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Role:           "assistant",
		Content:        response,
		Intent:         intent,
		CreatedAt:      now,
	}
	if err := uc.store.AppendMessage(ctx, assistantMsg); err != nil {
		uc.logger.Warn("persist_assistant_message_failed", "error", err)
	}
}

func (uc *ChatUseCase) publishEvent(ctx context.Context, req domain.ChatRequest, queryResult *domain.QueryResult, elapsed time.Duration) {
	if uc.publisher == nil {
		return
	}
	event := domain.QueryProcessedEvent{
		ConversationID: req.ConversationID,
		Query:          req.Message,
		Intent:         queryResult.Classification.Primary,
		Methods:        queryResult.Methods,
		EntityCount:    len(queryResult.SemanticHits),
		DurationMS:     float64(elapsed.Milliseconds()),
		ProcessedAt:    time.Now().UTC(),
	}
	if err := uc.publisher.PublishQueryProcessed(ctx, event); err != nil {
		uc.logger.Warn("publish_query_event_failed", "error", err)
	}
}
