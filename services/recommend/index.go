package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"toonarchive/models"
)

// ErrTitleNotFound is returned when a queried title is absent from the
// index. It is a distinct failure, never a silent empty result.
var ErrTitleNotFound = errors.New("title not found in similarity index")

const (
	// overfetchFactor and overfetchMin size the candidate pool taken
	// before the caller's visible-title filter is applied.
	overfetchFactor = 5
	overfetchMin    = 30

	// explainNeighbors is how many unfiltered neighbors feed the
	// shared-genre tally; explainGenres caps the genres mentioned.
	explainNeighbors = 8
	explainGenres    = 3
)

// Index is the similarity index over one catalog snapshot: the full
// pairwise cosine matrix plus a title lookup. It is built once per
// loaded dataset and read-only afterward, so unsynchronized concurrent
// reads are safe. It must be rebuilt whenever the snapshot changes;
// there is no incremental update, which is acceptable at the catalog's
// scale of low thousands of rows.
type Index struct {
	records  []models.CleanRecord
	titleIdx map[string]int
	sim      [][]float64
}

// Neighbor is one recommendation: a record and its raw similarity to
// the query item.
type Neighbor struct {
	Record     models.CleanRecord `json:"record"`
	Similarity float64            `json:"similarity"`
}

// BuildIndex vectorizes every record's profile text and computes the
// pairwise similarity matrix. Duplicate titles keep the first row.
func BuildIndex(records []models.CleanRecord) *Index {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = BuildProfileText(rec)
	}

	titleIdx := make(map[string]int, len(records))
	for i, rec := range records {
		if _, exists := titleIdx[rec.Title]; !exists {
			titleIdx[rec.Title] = i
		}
	}

	return &Index{
		records:  records,
		titleIdx: titleIdx,
		sim:      similarityMatrix(vectorize(texts)),
	}
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.records)
}

// neighborsOf returns every other row ranked by descending similarity
// to row i, ties broken by row order for determinism.
func (ix *Index) neighborsOf(i int) []int {
	order := make([]int, 0, len(ix.records)-1)
	for j := range ix.records {
		if j != i {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ix.sim[i][order[a]] > ix.sim[i][order[b]]
	})
	return order
}

// Recommend returns the top k neighbors of the selected title that are
// members of the visible set. A nil visible set means no filter is
// active. The query title itself is never returned.
func (ix *Index) Recommend(title string, k int, visible map[string]bool) ([]Neighbor, error) {
	i, ok := ix.titleIdx[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	if k <= 0 {
		return nil, nil
	}

	// Over-fetch so the visible-set intersection still fills k rows.
	limit := overfetchFactor * k
	if limit < overfetchMin {
		limit = overfetchMin
	}
	candidates := ix.neighborsOf(i)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	var out []Neighbor
	for _, j := range candidates {
		rec := ix.records[j]
		if rec.Title == title {
			continue
		}
		if visible != nil && !visible[rec.Title] {
			continue
		}
		out = append(out, Neighbor{Record: rec, Similarity: ix.sim[i][j]})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Explain composes the rationale sentence for a title: the genres most
// shared with its closest unfiltered neighbors, its network and its
// decade. Purely descriptive; it never affects ranking or filtering.
func (ix *Index) Explain(title string) (string, error) {
	i, ok := ix.titleIdx[title]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	rec := ix.records[i]

	neighbors := ix.neighborsOf(i)
	if len(neighbors) > explainNeighbors {
		neighbors = neighbors[:explainNeighbors]
	}

	shared := sharedGenres(rec, ix.records, neighbors)

	var parts []string
	if len(shared) > 0 {
		parts = append(parts, "they share the "+pluralGenres(shared)+" "+joinNatural(shared))
	}
	if rec.NetworkNorm != nil && *rec.NetworkNorm != "" {
		parts = append(parts, "they aired on "+*rec.NetworkNorm)
	}
	if rec.Decade != nil {
		parts = append(parts, fmt.Sprintf("they come from the %ds", *rec.Decade))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Titles similar to %s based on their overall catalog profile.", rec.Title), nil
	}
	return fmt.Sprintf("Recommended alongside %s because %s.", rec.Title, joinNatural(parts)), nil
}

// sharedGenres tallies how many of the top neighbors share each of the
// query's genres, returning up to explainGenres of the most shared.
func sharedGenres(query models.CleanRecord, records []models.CleanRecord, neighbors []int) []string {
	queryGenres := make(map[string]bool, len(query.GenresList))
	for _, g := range query.GenresList {
		queryGenres[g] = true
	}
	if len(queryGenres) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, j := range neighbors {
		seen := make(map[string]bool)
		for _, g := range records[j].GenresList {
			if queryGenres[g] && !seen[g] {
				counts[g]++
				seen[g] = true
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(a, b int) bool {
		if counts[genres[a]] != counts[genres[b]] {
			return counts[genres[a]] > counts[genres[b]]
		}
		return genres[a] < genres[b]
	})
	if len(genres) > explainGenres {
		genres = genres[:explainGenres]
	}
	return genres
}

func pluralGenres(genres []string) string {
	if len(genres) == 1 {
		return "genre"
	}
	return "genres"
}

// joinNatural joins items with commas and a final "and".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
