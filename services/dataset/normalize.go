// Package dataset derives the clean catalog table from the enriched
// export and serves the browser API's filtering, stats and rankings.
package dataset

import (
	"strconv"
	"strings"
	"time"

	"toonarchive/models"
)

// networkSynonyms folds historical broadcaster labels into the
// canonical archive names. Labels absent from the table pass through.
var networkSynonyms = map[string]string{
	"Cartoon Network": "Cartoon Network",
	"Nickelodeon":     "Nickelodeon",
	"Disney Channel":  "Disney Channel",
	"Disney XD":       "Disney XD",
	"Adult Swim":      "Adult Swim",
	"Fox":             "Fox Kids/Jetix",
	"The WB":          "Kids WB",
}

// Normalize derives the clean fields for every enriched row.
func Normalize(recs []models.EnrichedRecord) []models.CleanRecord {
	out := make([]models.CleanRecord, 0, len(recs))
	for _, rec := range recs {
		clean := models.CleanRecord{EnrichedRecord: rec}

		clean.YearStart = yearStart(rec)
		if clean.YearStart != nil {
			decade := *clean.YearStart / 10 * 10
			clean.Decade = &decade
		}
		clean.NetworkNorm = normalizeNetwork(rec.TMDBNetwork)
		clean.GenresList = models.ParseGenreList(rec.TMDBGenres)
		clean.HasTMDBError = rec.TMDBError != nil

		out = append(out, clean)
	}
	return out
}

// yearStart prefers the TMDB date over the list-supplied year.
func yearStart(rec models.EnrichedRecord) *int {
	if y, ok := parseYear(rec.TMDBFirstAirDate); ok {
		return &y
	}
	if rec.Year != nil {
		y := *rec.Year
		return &y
	}
	return nil
}

// parseYear extracts the year from a TMDB date string. Full dates,
// year-month and bare-year values all parse; anything else is absent.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	if y, err := strconv.Atoi(s); err == nil && y > 0 {
		return y, true
	}
	return 0, false
}

func normalizeNetwork(network *string) *string {
	if network == nil {
		return nil
	}
	name := strings.TrimSpace(*network)
	if name == "" {
		return nil
	}
	if canonical, ok := networkSynonyms[name]; ok {
		return &canonical
	}
	return &name
}
