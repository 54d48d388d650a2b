// Package rca orchestrates the report ingestion pipeline: fetch the
// Tempest report, extract and dedupe failure records, fan one analysis
// call per unique failure out to the RCA engine, and reassemble the
// results in extraction order.
package rca

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rcaccelerator/server/internal/rca/engine"
	"github.com/rcaccelerator/server/internal/report"
	"github.com/rcaccelerator/server/pkg/models"
)

// fallbackResponse replaces the answer for any analysis call that failed.
const fallbackResponse = "Error generating RCA."

// Params carries the caller-supplied engine parameters for one run. They
// are passed through to every per-failure call unchanged.
type Params struct {
	SimilarityThreshold float64
	Generative          models.ModelSettings
	Embeddings          models.ModelSettings
	Rerank              models.ModelSettings
	ProfileName         string
	EnableRerank        bool
}

// ReportFetcher retrieves a report document by URL.
type ReportFetcher interface {
	Fetch(ctx context.Context, url string) (report.Document, error)
}

// Service runs RCA pipelines against an injected fetcher and engine.
type Service struct {
	fetcher     ReportFetcher
	engine      engine.Client
	callTimeout time.Duration
}

// NewService creates a Service. callTimeout bounds each individual engine
// call, not the whole batch.
func NewService(fetcher ReportFetcher, eng engine.Client, callTimeout time.Duration) *Service {
	return &Service{
		fetcher:     fetcher,
		engine:      eng,
		callTimeout: callTimeout,
	}
}

// AnalyzeReport runs the full pipeline for one report URL and returns one
// analysis per unique failing test, in first-seen document order. Fetch
// errors abort the run; per-call engine failures degrade to a placeholder
// entry and never abort sibling calls.
func (s *Service) AnalyzeReport(ctx context.Context, reportURL string, p Params) ([]models.TestAnalysis, error) {
	doc, err := s.fetcher.Fetch(ctx, reportURL)
	if err != nil {
		return nil, err
	}

	records := report.ExtractFailures(doc)
	if len(records) == 0 {
		return nil, ErrNoTracebacks
	}

	unique := report.DedupeFailures(records)
	slog.Info("report extracted",
		"url", reportURL,
		"failures", len(records),
		"unique", len(unique),
	)

	outcomes := s.dispatch(ctx, unique, p)
	return assemble(unique, outcomes), nil
}

// Prompt forwards a single chat message to the engine.
func (s *Service) Prompt(ctx context.Context, content string, p Params) (*engine.GenerateResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.engine.Generate(callCtx, buildRequest(content, p))
}

// outcome pairs one engine result with its error, held at the index of the
// unique failure that produced it.
type outcome struct {
	result *engine.GenerateResult
	err    error
}

// dispatch issues one engine call per unique failure, all concurrently,
// and waits for every call to settle. Results land in an indexed slice so
// the pairing with the originating failure is positional and completion
// order never matters. There is no concurrency ceiling beyond what the
// engine itself imposes; very large reports open as many simultaneous
// calls as they have unique failures.
func (s *Service) dispatch(ctx context.Context, failures []models.FailureRecord, p Params) []outcome {
	outcomes := make([]outcome, len(failures))

	var wg sync.WaitGroup
	for i, rec := range failures {
		wg.Add(1)
		go func(i int, rec models.FailureRecord) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic in analysis call", "test", rec.TestName, "error", r)
					outcomes[i] = outcome{err: fmt.Errorf("panic: %v", r)}
				}
			}()

			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			message := fmt.Sprintf("Test: %s\n\n%s", rec.TestName, rec.Traceback)
			result, err := s.engine.Generate(callCtx, buildRequest(message, p))
			if err != nil {
				slog.Warn("analysis call failed", "test", rec.TestName, "error", err)
			}
			outcomes[i] = outcome{result: result, err: err}
		}(i, rec)
	}
	wg.Wait()

	return outcomes
}

// assemble maps outcomes back onto their originating failures, in order.
// Failed or missing outcomes become placeholder entries. Never fails.
func assemble(failures []models.FailureRecord, outcomes []outcome) []models.TestAnalysis {
	results := make([]models.TestAnalysis, 0, len(failures))
	for i, rec := range failures {
		o := outcomes[i]
		if o.err != nil || o.result == nil {
			results = append(results, models.TestAnalysis{
				TestName: rec.TestName,
				Response: fallbackResponse,
				URLs:     []string{},
			})
			continue
		}

		urls := o.result.URLs
		if urls == nil {
			urls = []string{}
		}
		results = append(results, models.TestAnalysis{
			TestName: rec.TestName,
			Response: o.result.Content,
			URLs:     urls,
		})
	}
	return results
}

func buildRequest(message string, p Params) engine.GenerateRequest {
	return engine.GenerateRequest{
		Message:             message,
		SimilarityThreshold: p.SimilarityThreshold,
		GenerativeSettings:  p.Generative,
		EmbeddingsSettings:  p.Embeddings,
		RerankSettings:      p.Rerank,
		ProfileName:         p.ProfileName,
		EnableRerank:        p.EnableRerank,
	}
}
