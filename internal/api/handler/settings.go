// Package handler contains the HTTP handlers for the RCAccelerator API.
package handler

import (
	"fmt"

	"github.com/rcaccelerator/server/internal/rca"
	"github.com/rcaccelerator/server/pkg/models"
)

// Defaults supplies the server-level values applied when a request omits a
// setting. Populated from config at wiring time.
type Defaults struct {
	SimilarityThreshold float64
	Temperature         float64
	MaxTokens           int
	EnableRerank        bool
	Profile             string
}

// settingsBody is the model/search settings block shared by the prompt and
// RCA request bodies. Pointer fields distinguish "omitted" from zero.
type settingsBody struct {
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	Temperature         *float64 `json:"temperature"`
	MaxTokens           *int     `json:"max_tokens"`
	GenerativeModelName string   `json:"generative_model_name"`
	EmbeddingsModelName string   `json:"embeddings_model_name"`
	RerankModelName     string   `json:"rerank_model_name"`
	ProfileName         string   `json:"profile_name"`
	EnableRerank        *bool    `json:"enable_rerank"`
}

// params validates the settings block and merges it with the defaults.
// Model names are left as given; the catalog resolver fills and checks
// them afterwards.
func (b settingsBody) params(d Defaults) (rca.Params, error) {
	p := rca.Params{
		SimilarityThreshold: d.SimilarityThreshold,
		Generative: models.ModelSettings{
			Model:       b.GenerativeModelName,
			MaxTokens:   d.MaxTokens,
			Temperature: d.Temperature,
		},
		Embeddings:   models.ModelSettings{Model: b.EmbeddingsModelName},
		Rerank:       models.ModelSettings{Model: b.RerankModelName},
		ProfileName:  d.Profile,
		EnableRerank: d.EnableRerank,
	}

	if b.SimilarityThreshold != nil {
		if *b.SimilarityThreshold < -1.0 || *b.SimilarityThreshold > 1.0 {
			return rca.Params{}, fmt.Errorf("similarity_threshold must be between -1 and 1")
		}
		p.SimilarityThreshold = *b.SimilarityThreshold
	}
	if b.Temperature != nil {
		if *b.Temperature < 0.0 || *b.Temperature > 1.0 {
			return rca.Params{}, fmt.Errorf("temperature must be between 0 and 1")
		}
		p.Generative.Temperature = *b.Temperature
	}
	if b.MaxTokens != nil {
		if *b.MaxTokens <= 1 || *b.MaxTokens > 1024 {
			return rca.Params{}, fmt.Errorf("max_tokens must be between 2 and 1024")
		}
		p.Generative.MaxTokens = *b.MaxTokens
	}
	if b.ProfileName != "" {
		p.ProfileName = b.ProfileName
	}
	if b.EnableRerank != nil {
		p.EnableRerank = *b.EnableRerank
	}

	return p, nil
}
