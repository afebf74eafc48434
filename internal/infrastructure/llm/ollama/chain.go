package ollama

import (
	"context"
	"log/slog"
	"strings"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

// graphQuerier is the slice of the graph port the chain needs.
type graphQuerier interface {
	Select(ctx context.Context, query string) ([]domain.BindingRow, error)
}

type schemaReader interface {
	Overview(ctx context.Context) (domain.SchemaOverview, error)
}

// ChainQA answers a natural-language question by asking the LLM for a
// SPARQL query, executing it, and phrasing an answer from the rows. All
// failures are folded into the returned ChainAnswer; the chain is a
// degraded source, never a request failure.
type ChainQA struct {
	client *Client
	graph  graphQuerier
	schema schemaReader
	logger *slog.Logger
}

func NewChainQA(client *Client, graph graphQuerier, schema schemaReader, logger *slog.Logger) *ChainQA {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainQA{client: client, graph: graph, schema: schema, logger: logger}
}

// Available reports whether the chain can be invoked at all.
func (c *ChainQA) Available() bool {
	return c != nil && c.client.Configured() && c.graph != nil
}

func (c *ChainQA) Ask(ctx context.Context, question string) domain.ChainAnswer {
	overview := domain.SchemaOverview{}
	if c.schema != nil {
		if o, err := c.schema.Overview(ctx); err == nil {
			overview = o
		}
	}

	raw, err := c.client.generateText(ctx, buildSPARQLGenerationPrompt(question, overview))
	if err != nil {
		c.logger.Warn("chain_qa_generate_failed", "error", err)
		return domain.ChainAnswer{Err: err.Error()}
	}

	query := sanitizeGeneratedSPARQL(raw)
	if query == "" {
		return domain.ChainAnswer{Err: "chain produced no usable SPARQL query"}
	}

	rows, err := c.graph.Select(ctx, query)
	if err != nil {
		c.logger.Warn("chain_qa_query_failed", "error", err)
		return domain.ChainAnswer{SPARQLQuery: query, Err: err.Error()}
	}
	if len(rows) == 0 {
		return domain.ChainAnswer{SPARQLQuery: query, Err: "chain query returned no results"}
	}

	answer, err := c.client.generateText(ctx, buildRowAnswerPrompt(question, rows))
	if err != nil {
		c.logger.Warn("chain_qa_answer_failed", "error", err)
		return domain.ChainAnswer{SPARQLQuery: query, Err: err.Error()}
	}

	return domain.ChainAnswer{Answer: answer, SPARQLQuery: query}
}

// sanitizeGeneratedSPARQL strips markdown fences and leading chatter the
// model sometimes adds despite the prompt.
func sanitizeGeneratedSPARQL(raw string) string {
	text := strings.TrimSpace(raw)
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "sparql")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	text = strings.TrimSpace(text)

	upper := strings.ToUpper(text)
	for _, keyword := range []string{"PREFIX", "SELECT", "ASK"} {
		if idx := strings.Index(upper, keyword); idx >= 0 {
			return strings.TrimSpace(text[idx:])
		}
	}
	return ""
}
