package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"toonarchive/models"
	"toonarchive/services/dataset"
	"toonarchive/services/recommend"
)

// datasetService is the slice of the dataset service the catalog
// handlers consume.
type datasetService interface {
	Records() []models.CleanRecord
	Apply(f dataset.Filter) []models.CleanRecord
	VisibleTitles(f dataset.Filter) map[string]bool
	ComputeStats(f dataset.Filter) dataset.Stats
	TopBy(by string, n int, f dataset.Filter) ([]models.CleanRecord, error)
	WriteDisplayCSV(w io.Writer, f dataset.Filter) error
}

var _ datasetService = (*dataset.Service)(nil)

// recommenderService answers neighbor queries over the loaded snapshot.
type recommenderService interface {
	Recommend(title string, k int, visible map[string]bool) ([]recommend.Neighbor, error)
	Explain(title string) (string, error)
}

var _ recommenderService = (*recommend.Index)(nil)

type CatalogHandler struct {
	Dataset     datasetService
	Recommender recommenderService
}

func NewCatalogHandler(ds datasetService, rec recommenderService) *CatalogHandler {
	return &CatalogHandler{Dataset: ds, Recommender: rec}
}

// parseFilter reads the browser's active filters from query params.
func parseFilter(r *http.Request) dataset.Filter {
	q := r.URL.Query()
	f := dataset.Filter{
		Networks: q["network"],
		Genres:   q["genre"],
		Query:    strings.TrimSpace(q.Get("q")),
	}
	if v, err := strconv.Atoi(q.Get("yearMin")); err == nil {
		f.YearMin = &v
	}
	if v, err := strconv.Atoi(q.Get("yearMax")); err == nil {
		f.YearMax = &v
	}
	if v, err := strconv.ParseFloat(q.Get("voteMin"), 64); err == nil {
		f.VoteMin = &v
	}
	if v, err := strconv.ParseFloat(q.Get("voteMax"), 64); err == nil {
		f.VoteMax = &v
	}
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[handlers] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Catalog returns the records visible under the active filters.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	recs := h.Dataset.Apply(parseFilter(r))
	if recs == nil {
		recs = []models.CleanRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(recs),
		"items": recs,
	})
}

// ExportCSV streams the filtered view as a CSV download.
func (h *CatalogHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cartoons_filtered.csv"`)
	if err := h.Dataset.WriteDisplayCSV(w, parseFilter(r)); err != nil {
		log.Printf("[handlers] csv export: %v", err)
	}
}

// Stats returns the dashboard KPIs and chart data for the filtered view.
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Dataset.ComputeStats(parseFilter(r)))
}

// Rankings returns the filtered top-N by the requested criterion.
func (h *CatalogHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = "rating"
	}
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	recs, err := h.Dataset.TopBy(by, limit, parseFilter(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if recs == nil {
		recs = []models.CleanRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"by":    by,
		"items": recs,
	})
}

// Recommend returns the top-k neighbors of a title that remain visible
// under the active filters, each with its raw similarity score.
func (h *CatalogHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "title parameter is required")
		return
	}
	k := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("k")); err == nil && v > 0 {
		k = v
	}

	visible := h.Dataset.VisibleTitles(parseFilter(r))
	neighbors, err := h.Recommender.Recommend(title, k, visible)
	if err != nil {
		if errors.Is(err, recommend.ErrTitleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if neighbors == nil {
		neighbors = []recommend.Neighbor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title": title,
		"items": neighbors,
	})
}

// Explain returns the descriptive rationale for a title's neighbors.
func (h *CatalogHandler) Explain(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "title parameter is required")
		return
	}

	explanation, err := h.Recommender.Explain(title)
	if err != nil {
		if errors.Is(err, recommend.ErrTitleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"title":       title,
		"explanation": explanation,
	})
}
