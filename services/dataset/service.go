package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"toonarchive/models"
)

// Service holds one loaded snapshot of the clean catalog. The snapshot
// is immutable after construction.
type Service struct {
	records []models.CleanRecord
	folded  []string // accent-folded lowercase titles, index-aligned
}

func NewService(records []models.CleanRecord) *Service {
	folded := make([]string, len(records))
	for i, rec := range records {
		folded[i] = foldTitle(rec.Title)
	}
	return &Service{records: records, folded: folded}
}

// foldTitle lowercases and strips accents so "Pokémon" matches "pokemon".
func foldTitle(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}

// Records returns the full snapshot.
func (s *Service) Records() []models.CleanRecord {
	return s.records
}

// Filter is the browser's active filter set. Zero values mean "no
// constraint"; range filters let rows with absent values pass, matching
// the dashboard's behavior of never hiding unknowns.
type Filter struct {
	Networks []string
	YearMin  *int
	YearMax  *int
	VoteMin  *float64
	VoteMax  *float64
	Query    string
	Genres   []string
}

// Apply returns the records visible under the filter, in snapshot order.
func (s *Service) Apply(f Filter) []models.CleanRecord {
	networks := toSet(f.Networks)
	genres := toSet(f.Genres)
	query := foldTitle(strings.TrimSpace(f.Query))

	var out []models.CleanRecord
	for i, rec := range s.records {
		if len(networks) > 0 {
			if rec.NetworkNorm == nil || !networks[*rec.NetworkNorm] {
				continue
			}
		}
		if rec.YearStart != nil {
			if f.YearMin != nil && *rec.YearStart < *f.YearMin {
				continue
			}
			if f.YearMax != nil && *rec.YearStart > *f.YearMax {
				continue
			}
		}
		if rec.TMDBVoteAverage != nil {
			if f.VoteMin != nil && *rec.TMDBVoteAverage < *f.VoteMin {
				continue
			}
			if f.VoteMax != nil && *rec.TMDBVoteAverage > *f.VoteMax {
				continue
			}
		}
		if query != "" && !strings.Contains(s.folded[i], query) {
			continue
		}
		if len(genres) > 0 && !anyGenre(rec.GenresList, genres) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// VisibleTitles returns the title set visible under the filter, for the
// recommender's filter-consistency contract.
func (s *Service) VisibleTitles(f Filter) map[string]bool {
	visible := make(map[string]bool)
	for _, rec := range s.Apply(f) {
		visible[rec.Title] = true
	}
	return visible
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	return set
}

func anyGenre(have models.GenreList, want map[string]bool) bool {
	for _, g := range have {
		if want[g] {
			return true
		}
	}
	return false
}

// Rankings

// TopBy returns the n highest records under the filter by the given
// criterion: "rating" (vote count tiebreak), "popularity" or
// "episodes". Rows lacking the criterion's value are excluded.
func (s *Service) TopBy(by string, n int, f Filter) ([]models.CleanRecord, error) {
	recs := s.Apply(f)

	var key func(models.CleanRecord) (float64, float64, bool)
	switch by {
	case "rating":
		key = func(r models.CleanRecord) (float64, float64, bool) {
			if r.TMDBVoteAverage == nil {
				return 0, 0, false
			}
			tiebreak := 0.0
			if r.TMDBVoteCount != nil {
				tiebreak = float64(*r.TMDBVoteCount)
			}
			return *r.TMDBVoteAverage, tiebreak, true
		}
	case "popularity":
		key = func(r models.CleanRecord) (float64, float64, bool) {
			if r.TMDBPopularity == nil {
				return 0, 0, false
			}
			return *r.TMDBPopularity, 0, true
		}
	case "episodes":
		key = func(r models.CleanRecord) (float64, float64, bool) {
			if r.TMDBNumberOfEpisodes == nil {
				return 0, 0, false
			}
			return float64(*r.TMDBNumberOfEpisodes), 0, true
		}
	default:
		return nil, fmt.Errorf("unknown ranking criterion %q", by)
	}

	type scored struct {
		rec       models.CleanRecord
		primary   float64
		secondary float64
	}
	var rows []scored
	for _, rec := range recs {
		if p, sec, ok := key(rec); ok {
			rows = append(rows, scored{rec, p, sec})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].primary != rows[j].primary {
			return rows[i].primary > rows[j].primary
		}
		return rows[i].secondary > rows[j].secondary
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	out := make([]models.CleanRecord, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	return out, nil
}
