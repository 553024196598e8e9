package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/akave-ai/alephweb/internal/cache"
	"github.com/akave-ai/alephweb/internal/reference"
	"github.com/akave-ai/alephweb/internal/response"
	"github.com/akave-ai/alephweb/internal/schema"
)

// MetadataHandler serves the reference data the client needs at start-up.
type MetadataHandler struct {
	Schemata schema.Store
}

// Metadata returns facets, source categories, country and language names and
// the schema views (GET /api/1/metadata).
func (h *MetadataHandler) Metadata(c echo.Context) error {
	views, err := schema.Views(c.Request().Context(), h.Schemata)
	if err != nil {
		return fmt.Errorf("load schemata: %w", err)
	}
	cache.Enable(c, false)
	return response.OK(c, map[string]any{
		"fields":            reference.CoreFacets,
		"source_categories": reference.SourceCategories,
		"countries":         reference.CountryNames(),
		"languages":         reference.LanguageNames(),
		"schemata":          views,
	})
}
