package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

func TestSanitizeGeneratedSPARQL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean query passes through",
			in:   "PREFIX rdf: <x>\nSELECT ?s WHERE { ?s ?p ?o } LIMIT 5",
			want: "PREFIX rdf: <x>\nSELECT ?s WHERE { ?s ?p ?o } LIMIT 5",
		},
		{
			name: "markdown fences stripped",
			in:   "```sparql\nSELECT ?s WHERE { ?s ?p ?o }\n```",
			want: "SELECT ?s WHERE { ?s ?p ?o }",
		},
		{
			name: "leading chatter before keyword dropped",
			in:   "Here is the query:\nSELECT ?s WHERE { ?s ?p ?o }",
			want: "SELECT ?s WHERE { ?s ?p ?o }",
		},
		{
			name: "ask queries accepted",
			in:   "ASK { ?s ?p ?o }",
			want: "ASK { ?s ?p ?o }",
		},
		{
			name: "no keyword means no query",
			in:   "I cannot translate that question.",
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeGeneratedSPARQL(tc.in); got != tc.want {
				t.Fatalf("sanitizeGeneratedSPARQL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

type stubGraph struct {
	gotQuery string
	rows     []domain.BindingRow
	err      error
}

func (s *stubGraph) Select(_ context.Context, query string) ([]domain.BindingRow, error) {
	s.gotQuery = query
	return s.rows, s.err
}

type stubSchema struct {
	overview domain.SchemaOverview
}

func (s *stubSchema) Overview(context.Context) (domain.SchemaOverview, error) {
	return s.overview, nil
}

// generateServer answers /api/generate with canned responses in call order.
func generateServer(t *testing.T, responses ...string) *httptest.Server {
	t.Helper()
	call := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Stream {
			t.Errorf("streaming must be disabled")
		}
		resp := responses[len(responses)-1]
		if call < len(responses) {
			resp = responses[call]
		}
		call++
		_ = json.NewEncoder(w).Encode(map[string]string{"response": resp})
	}))
}

func TestChainQAAnswersFromRows(t *testing.T) {
	server := generateServer(t,
		"```sparql\nSELECT ?label WHERE { ?s rdfs:label ?label } LIMIT 5\n```",
		"The graph contains Cat and Dog.",
	)
	defer server.Close()

	graph := &stubGraph{rows: []domain.BindingRow{{"label": "Cat"}, {"label": "Dog"}}}
	chain := NewChainQA(New(server.URL, "llama3", "nomic", nil), graph, &stubSchema{}, nil)

	if !chain.Available() {
		t.Fatalf("chain must be available with endpoint and graph")
	}

	answer := chain.Ask(context.Background(), "what labels exist?")
	if answer.Err != "" {
		t.Fatalf("unexpected chain error %q", answer.Err)
	}
	if answer.Answer != "The graph contains Cat and Dog." {
		t.Fatalf("answer = %q", answer.Answer)
	}
	if !strings.HasPrefix(answer.SPARQLQuery, "SELECT ?label") {
		t.Fatalf("sanitized query = %q", answer.SPARQLQuery)
	}
	if graph.gotQuery != answer.SPARQLQuery {
		t.Fatalf("executed query differs from recorded query")
	}
}

func TestChainQAQueryFailureFoldedIntoAnswer(t *testing.T) {
	server := generateServer(t, "SELECT ?s WHERE { ?s ?p ?o }")
	defer server.Close()

	graph := &stubGraph{err: errors.New("endpoint down")}
	chain := NewChainQA(New(server.URL, "llama3", "nomic", nil), graph, nil, nil)

	answer := chain.Ask(context.Background(), "anything")
	if answer.Err == "" {
		t.Fatalf("expected folded error")
	}
	if answer.SPARQLQuery == "" {
		t.Fatalf("generated query must be preserved for diagnostics")
	}
	if answer.Answer != "" {
		t.Fatalf("no answer expected, got %q", answer.Answer)
	}
}

func TestChainQAEmptyRowsReportNoResults(t *testing.T) {
	server := generateServer(t, "SELECT ?s WHERE { ?s ?p ?o }")
	defer server.Close()

	chain := NewChainQA(New(server.URL, "llama3", "nomic", nil), &stubGraph{}, nil, nil)

	answer := chain.Ask(context.Background(), "anything")
	if answer.Err != "chain query returned no results" {
		t.Fatalf("err = %q", answer.Err)
	}
}

func TestChainQAUnusableGenerationReported(t *testing.T) {
	server := generateServer(t, "I do not know any SPARQL.")
	defer server.Close()

	chain := NewChainQA(New(server.URL, "llama3", "nomic", nil), &stubGraph{}, nil, nil)

	answer := chain.Ask(context.Background(), "anything")
	if answer.Err != "chain produced no usable SPARQL query" {
		t.Fatalf("err = %q", answer.Err)
	}
}

func TestChainQAUnavailableWithoutEndpointOrGraph(t *testing.T) {
	if chain := NewChainQA(New("", "llama3", "nomic", nil), &stubGraph{}, nil, nil); chain.Available() {
		t.Fatalf("chain without endpoint must be unavailable")
	}
	if chain := NewChainQA(New("http://localhost:11434", "llama3", "nomic", nil), nil, nil, nil); chain.Available() {
		t.Fatalf("chain without graph must be unavailable")
	}
}

func TestGenerateAnswerUsesIntentInstruction(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotPrompt = body.Prompt
		fmt.Fprint(w, `{"response":" A person is an agent. "}`)
	}))
	defer server.Close()

	g := NewGenerator(New(server.URL, "llama3", "nomic", nil))
	answer, err := g.GenerateAnswer(context.Background(), "what is a person?", "ctx", domain.IntentDefinition)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if answer != "A person is an agent." {
		t.Fatalf("answer not trimmed: %q", answer)
	}
	if !strings.Contains(gotPrompt, "clear and comprehensive definition") {
		t.Fatalf("definition instruction missing from prompt:\n%s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "what is a person?") {
		t.Fatalf("question missing from prompt")
	}
}
