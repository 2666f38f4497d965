package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeEmbedder returns a fixed vector without network access.
type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func TestQdrantGateway_SemanticSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.URL.Path != "/collections/policies/points/search" {
			t.Errorf("Expected search path, got %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("Expected api-key header test-key, got %s", r.Header.Get("api-key"))
		}

		var body struct {
			Vector      []float64 `json:"vector"`
			Limit       int       `json:"limit"`
			WithPayload bool      `json:"with_payload"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(body.Vector) != 3 {
			t.Errorf("Expected 3-dimensional vector, got %d", len(body.Vector))
		}
		if body.Limit != 2 {
			t.Errorf("Expected limit 2, got %d", body.Limit)
		}
		if !body.WithPayload {
			t.Error("Expected with_payload to be true")
		}

		_, _ = w.Write([]byte(`{"result": [
			{"score": 0.91, "payload": {"document_id": "sec-iv", "text": "Collision coverage terms."}},
			{"score": 0.74, "payload": {"document_id": "sec-ii", "text": "Exclusions."}}
		]}`))
	}))
	defer server.Close()

	gateway := NewQdrantGateway(QdrantConfig{
		URL:        server.URL,
		APIKey:     "test-key",
		Collection: "policies",
		TopK:       2,
	}, &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}, nil)

	passages, err := gateway.SemanticSearch(context.Background(), "collision coverage")
	if err != nil {
		t.Fatalf("SemanticSearch failed: %v", err)
	}

	if len(passages) != 2 {
		t.Fatalf("Expected 2 passages, got %d", len(passages))
	}
	if passages[0].DocumentID != "sec-iv" {
		t.Errorf("Expected document sec-iv first, got %s", passages[0].DocumentID)
	}
	if passages[0].Score != 0.91 {
		t.Errorf("Expected score 0.91, got %v", passages[0].Score)
	}
	if passages[1].Text != "Exclusions." {
		t.Errorf("Unexpected second passage text: %s", passages[1].Text)
	}
}

func TestQdrantGateway_SemanticSearch_EmbedError(t *testing.T) {
	gateway := NewQdrantGateway(QdrantConfig{
		URL:        "http://localhost:6333",
		Collection: "policies",
	}, &fakeEmbedder{err: context.DeadlineExceeded}, nil)

	_, err := gateway.SemanticSearch(context.Background(), "collision coverage")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "embed query") {
		t.Errorf("Expected embed error context, got: %v", err)
	}
}

func TestQdrantGateway_LookupMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/policies/points/scroll" {
			t.Errorf("Expected scroll path, got %s", r.URL.Path)
		}

		var body struct {
			Filter struct {
				Must []struct {
					Key   string `json:"key"`
					Match struct {
						Value string `json:"value"`
					} `json:"match"`
				} `json:"must"`
			} `json:"filter"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(body.Filter.Must) != 1 || body.Filter.Must[0].Key != "policy_id" {
			t.Errorf("Expected policy_id filter, got %+v", body.Filter.Must)
		}
		if body.Filter.Must[0].Match.Value != "POLICY-ABC123" {
			t.Errorf("Expected match value POLICY-ABC123, got %s", body.Filter.Must[0].Match.Value)
		}

		_, _ = w.Write([]byte(`{"result": {"points": [
			{"payload": {"document_id": "decl-1", "text": "Declarations page."}}
		]}}`))
	}))
	defer server.Close()

	gateway := NewQdrantGateway(QdrantConfig{
		URL:        server.URL,
		Collection: "policies",
	}, nil, nil)

	passages, err := gateway.LookupMetadata(context.Background(), "policy_id", "POLICY-ABC123")
	if err != nil {
		t.Fatalf("LookupMetadata failed: %v", err)
	}

	if len(passages) != 1 {
		t.Fatalf("Expected 1 passage, got %d", len(passages))
	}
	if passages[0].DocumentID != "decl-1" {
		t.Errorf("Expected document decl-1, got %s", passages[0].DocumentID)
	}
	if passages[0].Score != 0 {
		t.Errorf("Expected zero score for metadata lookup, got %v", passages[0].Score)
	}
}

func TestQdrantGateway_LookupMetadata_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": {"points": []}}`))
	}))
	defer server.Close()

	gateway := NewQdrantGateway(QdrantConfig{URL: server.URL, Collection: "policies"}, nil, nil)

	passages, err := gateway.LookupMetadata(context.Background(), "policy_id", "POLICY-UNKNOWN")
	if err != nil {
		t.Fatalf("LookupMetadata failed: %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("Expected no passages, got %d", len(passages))
	}
}

func TestQdrantGateway_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status": {"error": "collection not found"}}`))
	}))
	defer server.Close()

	gateway := NewQdrantGateway(QdrantConfig{URL: server.URL, Collection: "policies"},
		&fakeEmbedder{vector: []float64{0.1}}, nil)

	_, err := gateway.SemanticSearch(context.Background(), "collision")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "collection not found") {
		t.Errorf("Expected server detail in error, got: %v", err)
	}
}

func TestQdrantGateway_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/collections/policies" {
			t.Errorf("Expected collection path, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"result": {"status": "green"}}`))
	}))
	defer server.Close()

	gateway := NewQdrantGateway(QdrantConfig{URL: server.URL, Collection: "policies"}, nil, nil)

	if err := gateway.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	// Test failure
	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if err := gateway.Ping(context.Background()); err == nil {
		t.Error("Expected error for missing collection, got nil")
	}
}
