// Package engine is the client for the RCA generation engine, the
// retrieval-augmented service that turns a failure description into a root
// cause explanation with supporting links.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rcaccelerator/server/pkg/models"
)

// Sentinel errors for engine client failures.
var (
	ErrEngineUnreachable = errors.New("rca engine unreachable")
	ErrEngineError       = errors.New("rca engine error")
	ErrEngineTimeout     = errors.New("rca engine timeout")
)

// GenerateRequest is one analysis call. All parameters are passed through
// to the engine unchanged.
type GenerateRequest struct {
	Message             string               `json:"message"`
	SimilarityThreshold float64              `json:"similarity_threshold"`
	GenerativeSettings  models.ModelSettings `json:"generative_model_settings"`
	EmbeddingsSettings  models.ModelSettings `json:"embeddings_model_settings"`
	RerankSettings      models.ModelSettings `json:"rerank_model_settings"`
	ProfileName         string               `json:"profile_name"`
	EnableRerank        bool                 `json:"enable_rerank"`
}

// GenerateResult is the engine's answer: generated text plus the knowledge
// base URLs that backed it.
type GenerateResult struct {
	Content string   `json:"content"`
	URLs    []string `json:"urls"`
}

// Catalog lists the model names currently served by the engine, per role.
type Catalog struct {
	Generative []string `json:"generative"`
	Embeddings []string `json:"embeddings"`
	Rerank     []string `json:"rerank"`
}

// Client is the interface for talking to the RCA engine.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Models(ctx context.Context) (*Catalog, error)
}

// HTTPClient implements Client against the engine's HTTP API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a new engine HTTP client. token may be empty when
// the engine is unauthenticated.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrEngineError, resp.StatusCode)
	}

	var result GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding generate response: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) Models(ctx context.Context) (*Catalog, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrEngineError, resp.StatusCode)
	}

	var catalog Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decoding models response: %w", err)
	}
	return &catalog, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
