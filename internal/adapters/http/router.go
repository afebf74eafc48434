package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
	"github.com/antonkh/ontology-assistant/internal/core/ports"
	"github.com/antonkh/ontology-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	processor ports.QueryProcessor
	chat      ports.ChatService
	metadata  ports.GraphMetadata
	indexer   ports.OntologyIndexer
	metrics   *metrics.ServerMetrics
	opts      Options
}

// Options tunes the traffic-control middleware in front of the handlers
// and carries the deployment's query-processing defaults.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	QueueTimeout   time.Duration
	QueryDefaults  domain.Options
}

func NewRouter(
	processor ports.QueryProcessor,
	chat ports.ChatService,
	metadata ports.GraphMetadata,
	indexer ports.OntologyIndexer,
	serverMetrics *metrics.ServerMetrics,
	opts Options,
) *Router {
	if opts.QueueTimeout <= 0 {
		opts.QueueTimeout = 100 * time.Millisecond
	}
	if opts.QueryDefaults.TopK <= 0 {
		opts.QueryDefaults = domain.DefaultOptions()
	}
	return &Router{
		processor: processor,
		chat:      chat,
		metadata:  metadata,
		indexer:   indexer,
		metrics:   serverMetrics,
		opts:      opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.processQuery)
	mux.HandleFunc("/v1/chat", rt.chatTurn)
	mux.HandleFunc("/v1/suggestions", rt.suggestions)
	mux.HandleFunc("/v1/schema/stats", rt.schemaStats)
	mux.HandleFunc("/v1/admin/reindex", rt.reindex)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.opts.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.QueueTimeout)
	}
	if rt.opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) processQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query                 string `json:"query"`
		TopK                  int    `json:"top_k"`
		UseChainQA            *bool  `json:"use_chain_qa"`
		IncludeSemanticSearch *bool  `json:"include_semantic_search"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	opts := rt.opts.QueryDefaults
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}
	if req.UseChainQA != nil {
		opts.UseChainQA = *req.UseChainQA
	}
	if req.IncludeSemanticSearch != nil {
		opts.IncludeSemanticSearch = *req.IncludeSemanticSearch
	}

	result, err := rt.processor.Process(r.Context(), req.Query, opts)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) chatTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Message        string `json:"message"`
		UserID         string `json:"user_id"`
		ConversationID string `json:"conversation_id"`
		IncludeContext bool   `json:"include_context"`
		TopK           int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	opts := rt.opts.QueryDefaults
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}

	result, err := rt.chat.Chat(r.Context(), domain.ChatRequest{
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		IncludeContext: req.IncludeContext,
		Options:        opts,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) suggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	partial := r.URL.Query().Get("q")
	items, err := rt.chat.Suggestions(r.Context(), partial)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": items})
}

func (rt *Router) schemaStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.metadata == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "graph store not configured"})
		return
	}

	overview, err := rt.metadata.Overview(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.indexer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "indexing not configured"})
		return
	}

	indexed, err := rt.indexer.Reindex(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": indexed})
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSourceUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
