package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Generate(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(GenerateResult{
			Content: "the volume service was down",
			URLs:    []string{"https://kb.example.com/volumes"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "engine-token", 5*time.Second)
	result, err := c.Generate(context.Background(), GenerateRequest{
		Message:             "Test: test_attach\n\nTraceback",
		SimilarityThreshold: 0.6,
		ProfileName:         "ci-logs",
		EnableRerank:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/generate", gotPath)
	assert.Equal(t, "Bearer engine-token", gotAuth)
	assert.Equal(t, "Test: test_attach\n\nTraceback", gotBody["message"])
	assert.Equal(t, 0.6, gotBody["similarity_threshold"])
	assert.Equal(t, "ci-logs", gotBody["profile_name"])
	assert.Equal(t, true, gotBody["enable_rerank"])

	assert.Equal(t, "the volume service was down", result.Content)
	assert.Equal(t, []string{"https://kb.example.com/volumes"}, result.URLs)
}

func TestHTTPClient_Generate_NoTokenOmitsAuthHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(GenerateResult{Content: "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	_, err := c.Generate(context.Background(), GenerateRequest{Message: "hi"})
	require.NoError(t, err)
	assert.False(t, sawAuth)
}

func TestHTTPClient_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	_, err := c.Generate(context.Background(), GenerateRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrEngineError)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPClient_Generate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(srv.URL, "", 2*time.Second)
	_, err := c.Generate(context.Background(), GenerateRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrEngineUnreachable)
}

func TestHTTPClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects client disconnect and
		// cancels the request context; otherwise Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	_, err := c.Generate(ctx, GenerateRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrEngineTimeout)
}

func TestHTTPClient_Models(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(Catalog{
			Generative: []string{"mistral-7b"},
			Embeddings: []string{"nomic-embed-text"},
			Rerank:     []string{"bge-reranker"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	catalog, err := c.Models(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/models", gotPath)
	assert.Equal(t, []string{"mistral-7b"}, catalog.Generative)
	assert.Equal(t, []string{"nomic-embed-text"}, catalog.Embeddings)
	assert.Equal(t, []string{"bge-reranker"}, catalog.Rerank)
}

func TestHTTPClient_Models_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	_, err := c.Models(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestClassifyError(t *testing.T) {
	assert.ErrorIs(t, classifyError(context.DeadlineExceeded), ErrEngineTimeout)
	assert.ErrorIs(t, classifyError(context.Canceled), ErrEngineTimeout)
}
