package mock

import (
	"context"
	"time"

	"github.com/rcaccelerator/server/internal/rca/engine"
)

// MockEngine satisfies engine.Client for testing.
type MockEngine struct {
	GenerateFunc func(ctx context.Context, req engine.GenerateRequest) (*engine.GenerateResult, error)
	ModelsFunc   func(ctx context.Context) (*engine.Catalog, error)
}

func (m *MockEngine) Generate(ctx context.Context, req engine.GenerateRequest) (*engine.GenerateResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &engine.GenerateResult{}, nil
}

func (m *MockEngine) Models(ctx context.Context) (*engine.Catalog, error) {
	if m.ModelsFunc != nil {
		return m.ModelsFunc(ctx)
	}
	return &engine.Catalog{}, nil
}

// NewMockEngine returns a MockEngine with sensible default responses.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		GenerateFunc: func(_ context.Context, _ engine.GenerateRequest) (*engine.GenerateResult, error) {
			return &engine.GenerateResult{
				Content: "Simulated root cause analysis from mock engine",
				URLs:    []string{"https://kb.example.com/article/1"},
			}, nil
		},
		ModelsFunc: func(_ context.Context) (*engine.Catalog, error) {
			return &engine.Catalog{
				Generative: []string{"mistral-7b", "granite-8b"},
				Embeddings: []string{"nomic-embed-text"},
				Rerank:     []string{"bge-reranker"},
			}, nil
		},
	}
}

// NewFailingEngine returns a MockEngine whose calls always return err.
func NewFailingEngine(err error) *MockEngine {
	return &MockEngine{
		GenerateFunc: func(_ context.Context, _ engine.GenerateRequest) (*engine.GenerateResult, error) {
			return nil, err
		},
		ModelsFunc: func(_ context.Context) (*engine.Catalog, error) {
			return nil, err
		},
	}
}

// NewSlowEngine returns a MockEngine that delays each Generate call by d
// before delegating to inner, or aborts early when the context ends.
func NewSlowEngine(inner engine.Client, d time.Duration) *MockEngine {
	return &MockEngine{
		GenerateFunc: func(ctx context.Context, req engine.GenerateRequest) (*engine.GenerateResult, error) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return inner.Generate(ctx, req)
		},
		ModelsFunc: func(ctx context.Context) (*engine.Catalog, error) {
			return inner.Models(ctx)
		},
	}
}

// Compile-time check that MockEngine implements engine.Client.
var _ engine.Client = (*MockEngine)(nil)
