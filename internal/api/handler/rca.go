package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/rcaccelerator/server/internal/api/response"
	"github.com/rcaccelerator/server/internal/rca"
	"github.com/rcaccelerator/server/internal/rca/engine"
	"github.com/rcaccelerator/server/internal/report"
	"github.com/rcaccelerator/server/pkg/models"
)

// ReportAnalyzer runs the RCA pipeline for one report URL.
type ReportAnalyzer interface {
	AnalyzeReport(ctx context.Context, reportURL string, p rca.Params) ([]models.TestAnalysis, error)
}

// SettingsResolver validates and completes model settings against the
// engine's catalog.
type SettingsResolver interface {
	ResolveModels(ctx context.Context, p *rca.Params) error
}

// NewRcaFromTempestHandler returns an http.HandlerFunc for
// POST /api/v1/rca-from-tempest.
func NewRcaFromTempestHandler(svc ReportAnalyzer, resolver SettingsResolver, defaults Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TempestReportURL string `json:"tempest_report_url"`
			settingsBody
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.TempestReportURL == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "tempest_report_url is required", nil)
			return
		}
		if u, err := url.Parse(req.TempestReportURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"tempest_report_url must be a valid http(s) URL", nil)
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

		results, err := svc.AnalyzeReport(r.Context(), req.TempestReportURL, params)
		if err != nil {
			writeAnalyzeError(w, err)
			return
		}

		response.JSON(w, results)
	}
}

// writeAnalyzeError maps pipeline errors onto HTTP responses. Remote
// status errors relay the upstream code, matching what the report server
// itself answered.
func writeAnalyzeError(w http.ResponseWriter, err error) {
	var statusErr *report.StatusError
	var transportErr *report.TransportError
	switch {
	case errors.Is(err, rca.ErrNoTracebacks):
		response.Error(w, http.StatusNotFound, "NO_TRACEBACKS_FOUND",
			"No tracebacks found in the provided Tempest report URL", nil)
	case errors.As(err, &statusErr):
		response.Error(w, statusErr.StatusCode, "REPORT_STATUS_ERROR", statusErr.Error(), nil)
	case errors.As(err, &transportErr):
		response.Error(w, http.StatusBadRequest, "REPORT_FETCH_FAILED", transportErr.Error(), nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

// writeSettingsError maps resolver errors onto HTTP responses.
func writeSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rca.ErrInvalidSettings):
		response.Error(w, http.StatusBadRequest, "INVALID_SETTINGS", err.Error(), nil)
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
}
