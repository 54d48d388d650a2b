package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rcaccelerator/server/internal/api/response"
	"github.com/rcaccelerator/server/internal/rca"
	"github.com/rcaccelerator/server/internal/rca/engine"
)

// Prompter forwards a single chat message to the RCA engine.
type Prompter interface {
	Prompt(ctx context.Context, content string, p rca.Params) (*engine.GenerateResult, error)
}

// NewPromptHandler returns an http.HandlerFunc for POST /api/v1/prompt.
func NewPromptHandler(svc Prompter, resolver SettingsResolver, defaults Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
			settingsBody
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Content == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content is required", nil)
			return
		}

		params, err := req.params(defaults)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		if err := resolver.ResolveModels(r.Context(), &params); err != nil {
			writeSettingsError(w, err)
			return
		}

		result, err := svc.Prompt(r.Context(), req.Content, params)
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrEngineTimeout):
				response.Error(w, http.StatusGatewayTimeout, "ENGINE_TIMEOUT",
					"The RCA engine took too long to respond", nil)
			case errors.Is(err, engine.ErrEngineUnreachable), errors.Is(err, engine.ErrEngineError):
				response.Error(w, http.StatusBadGateway, "ENGINE_UNAVAILABLE",
					"The RCA engine is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		urls := result.URLs
		if urls == nil {
			urls = []string{}
		}
		response.JSON(w, promptResponse{
			Response: result.Content,
			URLs:     urls,
		})
	}
}

type promptResponse struct {
	Response string   `json:"response"`
	URLs     []string `json:"urls"`
}
