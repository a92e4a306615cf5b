package dataset

import (
	"sort"
	"strconv"
)

// CountEntry is one label/count pair for the dashboard charts.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats is the dashboard's KPI and chart payload for a filtered view.
type Stats struct {
	Titles       int          `json:"titles"`
	Networks     int          `json:"networks"`
	MeanVote     *float64     `json:"mean_vote"`
	MeanEpisodes *float64     `json:"mean_episodes"`
	ByDecade     []CountEntry `json:"by_decade"`
	TopNetworks  []CountEntry `json:"top_networks"`
	TopGenres    []CountEntry `json:"top_genres"`
}

const (
	topNetworksLimit = 10
	topGenresLimit   = 12
)

// ComputeStats aggregates the records visible under the filter.
func (s *Service) ComputeStats(f Filter) Stats {
	recs := s.Apply(f)
	stats := Stats{Titles: len(recs)}

	networks := make(map[string]int)
	decades := make(map[int]int)
	genres := make(map[string]int)

	var voteSum float64
	var voteN int
	var epSum float64
	var epN int

	for _, rec := range recs {
		if rec.NetworkNorm != nil {
			networks[*rec.NetworkNorm]++
		}
		if rec.Decade != nil {
			decades[*rec.Decade]++
		}
		for _, g := range rec.GenresList {
			genres[g]++
		}
		if rec.TMDBVoteAverage != nil {
			voteSum += *rec.TMDBVoteAverage
			voteN++
		}
		if rec.TMDBNumberOfEpisodes != nil {
			epSum += float64(*rec.TMDBNumberOfEpisodes)
			epN++
		}
	}

	stats.Networks = len(networks)
	if voteN > 0 {
		mean := voteSum / float64(voteN)
		stats.MeanVote = &mean
	}
	if epN > 0 {
		mean := epSum / float64(epN)
		stats.MeanEpisodes = &mean
	}

	stats.ByDecade = decadeCounts(decades)
	stats.TopNetworks = topCounts(networks, topNetworksLimit)
	stats.TopGenres = topCounts(genres, topGenresLimit)
	return stats
}

func decadeCounts(decades map[int]int) []CountEntry {
	keys := make([]int, 0, len(decades))
	for d := range decades {
		keys = append(keys, d)
	}
	sort.Ints(keys)

	out := make([]CountEntry, 0, len(keys))
	for _, d := range keys {
		out = append(out, CountEntry{Label: strconv.Itoa(d), Count: decades[d]})
	}
	return out
}

func topCounts(counts map[string]int, limit int) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, CountEntry{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
