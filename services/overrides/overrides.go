// Package overrides applies the manual TMDB id correction table onto
// the raw list export.
package overrides

import (
	"toonarchive/models"
)

// Apply left-joins the override table onto items by exact title. A row
// matching an override with a non-nil id gets that id unconditionally,
// regardless of what the export carried. Returns the corrected rows and
// the number of rows overridden. Duplicate override titles keep the
// first definition.
func Apply(items []models.ListItem, rows []models.OverrideRow) ([]models.ListItem, int) {
	byTitle := make(map[string]models.OverrideRow, len(rows))
	for _, ov := range rows {
		if _, exists := byTitle[ov.Title]; !exists {
			byTitle[ov.Title] = ov
		}
	}

	out := make([]models.ListItem, len(items))
	copy(out, items)

	overridden := 0
	for i := range out {
		ov, ok := byTitle[out[i].Title]
		if !ok || ov.TMDBIDOverride == nil {
			continue
		}
		id := *ov.TMDBIDOverride
		out[i].TMDBID = &id
		overridden++
	}
	return out, overridden
}
