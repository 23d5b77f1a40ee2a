package embedding_service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/serillon/docqa/services/embedding_service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmbedDocumentsReordersByIndex(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("Expected request path /embeddings, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		// Data deliberately out of order.
		fmt.Fprint(w, `{
			"object": "list",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0.4, 0.5]},
				{"object": "embedding", "index": 0, "embedding": [0.1, 0.2]}
			],
			"model": "all-MiniLM-L6-v2"
		}`)
	}))
	defer server.Close()

	svc := embedding_service.NewOpenAIEmbeddingService(server.URL, "", "all-MiniLM-L6-v2", discardLogger())

	embeddings, err := svc.EmbedDocuments(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("Expected 2 embeddings, got %d", len(embeddings))
	}
	if embeddings[0][0] != 0.1 || embeddings[1][0] != 0.4 {
		t.Errorf("Embeddings were not re-ordered by index: %v", embeddings)
	}

	if gotBody["model"] != "all-MiniLM-L6-v2" {
		t.Errorf("Expected model in request body, got %v", gotBody["model"])
	}
	if gotBody["encoding_format"] != "float" {
		t.Errorf("Expected encoding_format float, got %v", gotBody["encoding_format"])
	}
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	svc := embedding_service.NewOpenAIEmbeddingService(server.URL, "", "m", discardLogger())

	embeddings, err := svc.EmbedDocuments(context.Background(), nil)
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if embeddings != nil {
		t.Errorf("Expected nil embeddings for empty input, got %v", embeddings)
	}
	if requests != 0 {
		t.Errorf("Expected no HTTP request for empty input, got %d", requests)
	}
}

func TestEmbedDocumentsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"message": "model not found", "type": "invalid_request_error", "code": "404"}}`)
	}))
	defer server.Close()

	svc := embedding_service.NewOpenAIEmbeddingService(server.URL, "", "missing-model", discardLogger())

	_, err := svc.EmbedDocuments(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("Expected an error but got none")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected provider message in error, got %q", err.Error())
	}
}

func TestEmbedDocumentsNonJSONFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "upstream offline")
	}))
	defer server.Close()

	svc := embedding_service.NewOpenAIEmbeddingService(server.URL, "", "m", discardLogger())

	_, err := svc.EmbedDocuments(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("Expected an error but got none")
	}
	if !strings.Contains(err.Error(), "returned status 503") {
		t.Errorf("Expected status code in error, got %q", err.Error())
	}
}

func TestEmbedDocumentsMissingEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "data": [{"object": "embedding", "index": 0, "embedding": [0.1]}]}`)
	}))
	defer server.Close()

	svc := embedding_service.NewOpenAIEmbeddingService(server.URL, "", "m", discardLogger())

	_, err := svc.EmbedDocuments(context.Background(), []string{"first", "second"})
	if err == nil {
		t.Fatal("Expected an error but got none")
	}
	if !strings.Contains(err.Error(), "no embedding for input 1") {
		t.Errorf("Expected missing-embedding error, got %q", err.Error())
	}
}

func TestEmbedQuerySendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "data": [{"object": "embedding", "index": 0, "embedding": [0.9, 0.1]}]}`)
	}))
	defer server.Close()

	svc := embedding_service.NewOpenAIEmbeddingService(server.URL, "secret-key", "m", discardLogger())

	embedding, err := svc.EmbedQuery(context.Background(), "what temperature")
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if len(embedding) != 2 || embedding[0] != 0.9 {
		t.Errorf("Unexpected query embedding: %v", embedding)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
}
