package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// AdminCatalogHandler exposes the loaded question catalog for inspection.
type AdminCatalogHandler struct {
	catalog *catalog.Catalog
	logger  *logging.Logger
}

func NewAdminCatalogHandler(cat *catalog.Catalog, logger *logging.Logger) *AdminCatalogHandler {
	if cat == nil {
		panic("handlers: catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminCatalogHandler{catalog: cat, logger: logger}
}

// GetCatalog handles GET /admin/catalog.
func (h *AdminCatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"version":   h.catalog.Version(),
		"count":     h.catalog.Len(),
		"questions": h.catalog.Questions(),
	})
	if err != nil {
		h.logger.Error("failed to encode catalog", "error", err)
	}
}
