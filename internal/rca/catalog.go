package rca

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcaccelerator/server/internal/cache"
	"github.com/rcaccelerator/server/internal/rca/engine"
	"github.com/rcaccelerator/server/pkg/models"
)

// CatalogResolver validates request model settings against the model
// catalog the engine currently serves. The catalog is cached in Redis with
// a TTL so a burst of requests does not hammer the engine's discovery
// endpoint; each pipeline invocation queries the resolver once.
type CatalogResolver struct {
	engine engine.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewCatalogResolver creates a CatalogResolver. cache may be nil, in which
// case every call goes straight to the engine.
func NewCatalogResolver(eng engine.Client, ca cache.Cache, ttl time.Duration) *CatalogResolver {
	return &CatalogResolver{engine: eng, cache: ca, ttl: ttl}
}

// Catalog returns the current model catalog, from cache when fresh.
func (r *CatalogResolver) Catalog(ctx context.Context) (*engine.Catalog, error) {
	if r.cache != nil {
		if raw, ok, err := r.cache.Get(ctx, cache.ModelCatalogKey()); err == nil && ok {
			var cat engine.Catalog
			if json.Unmarshal(raw, &cat) == nil {
				return &cat, nil
			}
		}
	}

	cat, err := r.engine.Models(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching model catalog: %w", err)
	}

	if r.cache != nil {
		if raw, err := json.Marshal(cat); err == nil {
			// Best effort; a cold cache only costs an extra engine round trip.
			_ = r.cache.Set(ctx, cache.ModelCatalogKey(), raw, r.ttl)
		}
	}
	return cat, nil
}

// ResolveModels fills empty model names in p with the catalog head and
// rejects names the engine does not serve. The profile name is validated
// as well. Wraps ErrInvalidSettings on rejection.
func (r *CatalogResolver) ResolveModels(ctx context.Context, p *Params) error {
	cat, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	if err := resolveModel(&p.Generative, cat.Generative, "generative"); err != nil {
		return err
	}
	if err := resolveModel(&p.Embeddings, cat.Embeddings, "embeddings"); err != nil {
		return err
	}
	if err := resolveModel(&p.Rerank, cat.Rerank, "rerank"); err != nil {
		return err
	}

	if !models.ValidProfile(p.ProfileName) {
		return fmt.Errorf("%w: invalid profile name %q, allowed: %v",
			ErrInvalidSettings, p.ProfileName, models.Profiles())
	}
	return nil
}

func resolveModel(s *models.ModelSettings, available []string, role string) error {
	if s.Model == "" {
		if len(available) == 0 {
			return fmt.Errorf("%w: no %s models available", ErrInvalidSettings, role)
		}
		s.Model = available[0]
		return nil
	}
	for _, name := range available {
		if name == s.Model {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid %s model %q, available: %v",
		ErrInvalidSettings, role, s.Model, available)
}
