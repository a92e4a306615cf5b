package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches the catalog API under /api.
func (h *CatalogHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", h.Catalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/export.csv", h.ExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/rankings", h.Rankings).Methods(http.MethodGet)
	api.HandleFunc("/recommend", h.Recommend).Methods(http.MethodGet)
	api.HandleFunc("/explain", h.Explain).Methods(http.MethodGet)
}
