package handler

import (
	"context"
	"net/http"

	"github.com/rcaccelerator/server/internal/api/response"
	"github.com/rcaccelerator/server/internal/rca/engine"
)

// CatalogProvider exposes the engine's current model catalog.
type CatalogProvider interface {
	Catalog(ctx context.Context) (*engine.Catalog, error)
}

// NewListModelsHandler returns an http.HandlerFunc for GET /api/v1/models.
func NewListModelsHandler(provider CatalogProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := provider.Catalog(r.Context())
		if err != nil {
			writeSettingsError(w, err)
			return
		}
		response.JSON(w, catalog)
	}
}
