package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antonkh/ontology-assistant/internal/core/domain"
)

type fakeEmbedder struct {
	embedCalls [][]string
	vector     []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls = append(f.embedCalls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func TestSearchMapsPayloadToHits(t *testing.T) {
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/ontology_entities/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"uri":"http://ex.org/Cat","local_name":"Cat","entity_type":"class","labels":["Cat"],"comments":["A feline."]}},
			{"score":0.42,"payload":{"uri":"http://ex.org/Dog","local_name":"Dog","entity_type":"class"}}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "ontology_entities", &fakeEmbedder{vector: []float32{0.1, 0.2}}, nil)
	hits, err := client.Search(context.Background(), "feline pets", 10, 0.4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotReq["score_threshold"] != 0.4 {
		t.Fatalf("score_threshold = %v", gotReq["score_threshold"])
	}
	if gotReq["limit"] != float64(10) {
		t.Fatalf("limit = %v", gotReq["limit"])
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	first := hits[0]
	if first.URI != "http://ex.org/Cat" || first.LocalName != "Cat" || first.EntityType != "class" {
		t.Fatalf("unexpected first hit %+v", first)
	}
	if first.Similarity != 0.91 {
		t.Fatalf("similarity = %v", first.Similarity)
	}
	if len(first.Comments) != 1 || first.Comments[0] != "A feline." {
		t.Fatalf("comments = %v", first.Comments)
	}
	if hits[1].Labels != nil {
		t.Fatalf("missing payload list must stay nil, got %v", hits[1].Labels)
	}
}

func TestSearchFiltersBelowThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"score":0.2,"payload":{"uri":"http://ex.org/Weak"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "ontology_entities", &fakeEmbedder{vector: []float32{1}}, nil)
	hits, err := client.Search(context.Background(), "anything", 5, 0.4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("sub-threshold hits must be dropped, got %v", hits)
	}
}

func TestSearchWrapsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "ontology_entities", &fakeEmbedder{vector: []float32{1}}, nil)
	_, err := client.Search(context.Background(), "anything", 5, 0.4)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable kind, got %v", err)
	}
}

func TestIndexEntitiesEnsuresCollectionOnce(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut && r.URL.Path == "/collections/ontology_entities" {
			// Second ensure would answer conflict; the client must not ask again.
			w.WriteHeader(http.StatusOK)
			return
		}
		var body struct {
			Points []struct {
				ID      string         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode upsert: %v", err)
		}
		if len(body.Points) != 1 {
			t.Errorf("expected 1 point, got %d", len(body.Points))
		} else {
			if body.Points[0].ID == "" {
				t.Errorf("point id must be set")
			}
			if body.Points[0].Payload["uri"] != "http://ex.org/Cat" {
				t.Errorf("payload uri = %v", body.Points[0].Payload["uri"])
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "ontology_entities", &fakeEmbedder{vector: []float32{0.5, 0.5}}, nil)
	entity := domain.IndexableEntity{
		URI:        "http://ex.org/Cat",
		LocalName:  "Cat",
		EntityType: "class",
		Text:       "Cat. A feline.",
	}
	if err := client.IndexEntities(context.Background(), []domain.IndexableEntity{entity}); err != nil {
		t.Fatalf("IndexEntities() error = %v", err)
	}
	if err := client.IndexEntities(context.Background(), []domain.IndexableEntity{entity}); err != nil {
		t.Fatalf("second IndexEntities() error = %v", err)
	}

	ensures := 0
	for _, p := range paths {
		if p == "PUT /collections/ontology_entities" {
			ensures++
		}
	}
	if ensures != 1 {
		t.Fatalf("collection must be ensured exactly once, got %d in %v", ensures, paths)
	}
}

func TestIndexEntitiesNoopOnEmptyInput(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	client := New("http://unused", "ontology_entities", embedder, nil)

	if err := client.IndexEntities(context.Background(), nil); err != nil {
		t.Fatalf("IndexEntities(nil) error = %v", err)
	}
	if len(embedder.embedCalls) != 0 {
		t.Fatalf("embedder must not be called for empty input")
	}
}
