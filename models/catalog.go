package models

import (
	"encoding/json"
	"strings"
)

// TMDB error markers recorded on a row when enrichment could not resolve
// any metadata. A row carries a marker if and only if every tmdb_* field
// is empty.
const (
	TMDBErrorMissingID = "missing_id"
	TMDBErrorNotFound  = "not_found"
)

// ListItem is one flattened entry from a Trakt list export.
// Identity is the Trakt ID when present, else (trakt_slug, title).
type ListItem struct {
	SourceListSlug string `csv:"source_list_slug" json:"source_list_slug"`
	SourceListID   int64  `csv:"source_list_id" json:"source_list_id"`
	Rank           *int   `csv:"rank" json:"rank"`
	ListedAt       string `csv:"listed_at" json:"listed_at"`
	ListItemID     *int64 `csv:"list_item_id" json:"list_item_id"`
	Type           string `csv:"type" json:"type"` // "show" or "movie"
	Title          string `csv:"title" json:"title"`
	Year           *int   `csv:"year" json:"year"`
	TraktID        *int64 `csv:"trakt_id" json:"trakt_id"`
	TraktSlug      string `csv:"trakt_slug" json:"trakt_slug"`
	TMDBID         *int64 `csv:"tmdb_id" json:"tmdb_id"`
	IMDBID         string `csv:"imdb_id" json:"imdb_id"`
	TVDBID         *int64 `csv:"tvdb_id" json:"tvdb_id"`
}

// EnrichedRecord is a ListItem plus metadata resolved from TMDB.
// One-to-one with ListItem.
type EnrichedRecord struct {
	ListItem

	TMDBDetectedType     string   `csv:"tmdb_detected_type" json:"tmdb_detected_type"` // "movie" or "tv"
	TMDBName             string   `csv:"tmdb_name" json:"tmdb_name"`
	TMDBFirstAirDate     string   `csv:"tmdb_first_air_date" json:"tmdb_first_air_date"`
	TMDBStatus           string   `csv:"tmdb_status" json:"tmdb_status"`
	TMDBGenres           string   `csv:"tmdb_genres" json:"tmdb_genres"` // comma-joined at this stage
	TMDBRuntimeMin       *int     `csv:"tmdb_runtime_min" json:"tmdb_runtime_min"`
	TMDBNetwork          *string  `csv:"tmdb_network" json:"tmdb_network"`
	TMDBOriginCountry    *string  `csv:"tmdb_origin_country" json:"tmdb_origin_country"`
	TMDBNumberOfSeasons  *int     `csv:"tmdb_number_of_seasons" json:"tmdb_number_of_seasons"`
	TMDBNumberOfEpisodes *int     `csv:"tmdb_number_of_episodes" json:"tmdb_number_of_episodes"`
	TMDBVoteAverage      *float64 `csv:"tmdb_vote_average" json:"tmdb_vote_average"`
	TMDBVoteCount        *int     `csv:"tmdb_vote_count" json:"tmdb_vote_count"`
	TMDBPopularity       *float64 `csv:"tmdb_popularity" json:"tmdb_popularity"`
	TMDBOriginalLanguage string   `csv:"tmdb_original_language" json:"tmdb_original_language"`
	TMDBError            *string  `csv:"tmdb_error" json:"tmdb_error"`
}

// CleanRecord is an EnrichedRecord with derived fields. This is the row
// shape the browser API and the recommender consume.
type CleanRecord struct {
	EnrichedRecord

	YearStart    *int      `csv:"year_start" json:"year_start"`
	Decade       *int      `csv:"decade" json:"decade"`
	NetworkNorm  *string   `csv:"network_norm" json:"network_norm"`
	GenresList   GenreList `csv:"genres_list" json:"genres_list"`
	HasTMDBError bool      `csv:"has_tmdb_error" json:"has_tmdb_error"`
}

// Problem is one row of the enrichment side report. The report is
// diagnostic only: it can always be regenerated from the main export's
// tmdb_error markers.
type Problem struct {
	RowIndex  int    `csv:"row_index" json:"row_index"`
	Title     string `csv:"title" json:"title"`
	TraktType string `csv:"trakt_type" json:"trakt_type"`
	TMDBID    *int64 `csv:"tmdb_id" json:"tmdb_id"`
	Problem   string `csv:"problem" json:"problem"`
}

// OverrideRow is one manual correction mapping a title to a fixed TMDB id.
type OverrideRow struct {
	Title            string `csv:"title" json:"title"`
	TMDBIDOverride   *int64 `csv:"tmdb_id_override" json:"tmdb_id_override"`
	TMDBTypeOverride string `csv:"tmdb_type_override" json:"tmdb_type_override"`
}

// GenreList is an ordered list of genre names. Order is as encountered
// and duplicates are allowed. It round-trips through CSV as a JSON array
// string and tolerates plain comma-separated input.
type GenreList []string

// MarshalCSV serializes the list as a JSON array string.
func (g GenreList) MarshalCSV() (string, error) {
	if g == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(g))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalCSV parses either a serialized list or a comma-separated string.
func (g *GenreList) UnmarshalCSV(s string) error {
	*g = ParseGenreList(s)
	return nil
}

// ParseGenreList normalizes a raw genre field into an ordered list.
// Input that looks like a serialized list (leading "[") gets a structured
// parse first; anything else, or a failed structured parse, is split on
// commas with whitespace trimmed and empty tokens dropped.
func ParseGenreList(s string) GenreList {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenreList{}
	}

	if strings.HasPrefix(s, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			out := make(GenreList, 0, len(parsed))
			for _, g := range parsed {
				out = append(out, strings.TrimSpace(g))
			}
			return out
		}
		// Tolerate single-quoted list encodings by stripping the
		// brackets and falling through to the comma split.
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	}

	parts := strings.Split(s, ",")
	out := make(GenreList, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
