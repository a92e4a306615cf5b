package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toonarchive/models"
)

func clean(title string, mutate func(*models.CleanRecord)) models.CleanRecord {
	rec := models.CleanRecord{
		EnrichedRecord: models.EnrichedRecord{ListItem: models.ListItem{Title: title, Type: "show"}},
	}
	if mutate != nil {
		mutate(&rec)
	}
	return rec
}

func fixtureService() *Service {
	return NewService([]models.CleanRecord{
		clean("Hey Arnold!", func(r *models.CleanRecord) {
			r.NetworkNorm = strptr("Nickelodeon")
			r.YearStart = intptr(1996)
			r.Decade = intptr(1990)
			r.TMDBVoteAverage = f64ptr(8.1)
			r.TMDBVoteCount = intptr(900)
			r.TMDBPopularity = f64ptr(30.0)
			r.TMDBNumberOfEpisodes = intptr(100)
			r.GenresList = models.GenreList{"Animation", "Comedy"}
		}),
		clean("Pokémon", func(r *models.CleanRecord) {
			r.NetworkNorm = strptr("Kids WB")
			r.YearStart = intptr(1997)
			r.Decade = intptr(1990)
			r.TMDBVoteAverage = f64ptr(7.5)
			r.TMDBVoteCount = intptr(5000)
			r.TMDBPopularity = f64ptr(120.0)
			r.TMDBNumberOfEpisodes = intptr(1200)
			r.GenresList = models.GenreList{"Animation", "Action & Adventure"}
		}),
		clean("Teen Titans", func(r *models.CleanRecord) {
			r.NetworkNorm = strptr("Cartoon Network")
			r.YearStart = intptr(2003)
			r.Decade = intptr(2000)
			r.TMDBVoteAverage = f64ptr(8.1)
			r.TMDBVoteCount = intptr(1800)
			r.TMDBPopularity = f64ptr(55.0)
			r.TMDBNumberOfEpisodes = intptr(65)
			r.GenresList = models.GenreList{"Animation", "Action & Adventure"}
		}),
		// row with absent year and vote, exercises range passthrough
		clean("Obscure Short", nil),
	})
}

func titles(recs []models.CleanRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestApply_NoFilterReturnsAll(t *testing.T) {
	s := fixtureService()
	assert.Len(t, s.Apply(Filter{}), 4)
}

func TestApply_NetworkFilter(t *testing.T) {
	s := fixtureService()
	got := s.Apply(Filter{Networks: []string{"Nickelodeon", "Kids WB"}})
	assert.Equal(t, []string{"Hey Arnold!", "Pokémon"}, titles(got))
}

func TestApply_YearRangePassesAbsent(t *testing.T) {
	s := fixtureService()
	got := s.Apply(Filter{YearMin: intptr(1997), YearMax: intptr(2010)})
	// Obscure Short has no year and is never hidden by a range
	assert.Equal(t, []string{"Pokémon", "Teen Titans", "Obscure Short"}, titles(got))
}

func TestApply_VoteRangePassesAbsent(t *testing.T) {
	s := fixtureService()
	got := s.Apply(Filter{VoteMin: f64ptr(8.0)})
	assert.Equal(t, []string{"Hey Arnold!", "Teen Titans", "Obscure Short"}, titles(got))
}

func TestApply_QueryFoldsAccents(t *testing.T) {
	s := fixtureService()

	got := s.Apply(Filter{Query: "pokemon"})
	require.Len(t, got, 1)
	assert.Equal(t, "Pokémon", got[0].Title)

	got = s.Apply(Filter{Query: "POKÉ"})
	require.Len(t, got, 1)
	assert.Equal(t, "Pokémon", got[0].Title)
}

func TestApply_GenreAnyOf(t *testing.T) {
	s := fixtureService()
	got := s.Apply(Filter{Genres: []string{"Action & Adventure"}})
	assert.Equal(t, []string{"Pokémon", "Teen Titans"}, titles(got))
}

func TestApply_FiltersCompose(t *testing.T) {
	s := fixtureService()
	got := s.Apply(Filter{
		Genres:  []string{"Animation"},
		YearMin: intptr(1990),
		YearMax: intptr(1999),
	})
	assert.Equal(t, []string{"Hey Arnold!", "Pokémon"}, titles(got))
}

func TestVisibleTitles(t *testing.T) {
	s := fixtureService()
	visible := s.VisibleTitles(Filter{Networks: []string{"Cartoon Network"}})
	assert.Equal(t, map[string]bool{"Teen Titans": true}, visible)
}

func TestTopBy_RatingWithVoteTiebreak(t *testing.T) {
	s := fixtureService()
	got, err := s.TopBy("rating", 2, Filter{})
	require.NoError(t, err)
	// Hey Arnold! and Teen Titans tie on 8.1; Teen Titans has more votes
	assert.Equal(t, []string{"Teen Titans", "Hey Arnold!"}, titles(got))
}

func TestTopBy_Popularity(t *testing.T) {
	s := fixtureService()
	got, err := s.TopBy("popularity", 0, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pokémon", "Teen Titans", "Hey Arnold!"}, titles(got))
}

func TestTopBy_EpisodesExcludesAbsent(t *testing.T) {
	s := fixtureService()
	got, err := s.TopBy("episodes", 10, Filter{})
	require.NoError(t, err)
	// Obscure Short has no episode count and is excluded, not ranked last
	assert.Equal(t, []string{"Pokémon", "Hey Arnold!", "Teen Titans"}, titles(got))
}

func TestTopBy_UnknownCriterion(t *testing.T) {
	s := fixtureService()
	_, err := s.TopBy("chaos", 5, Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chaos")
}

func TestComputeStats(t *testing.T) {
	s := fixtureService()
	stats := s.ComputeStats(Filter{})

	assert.Equal(t, 4, stats.Titles)
	assert.Equal(t, 3, stats.Networks)

	require.NotNil(t, stats.MeanVote)
	assert.InDelta(t, (8.1+7.5+8.1)/3, *stats.MeanVote, 1e-9)
	require.NotNil(t, stats.MeanEpisodes)
	assert.InDelta(t, (100.0+1200.0+65.0)/3, *stats.MeanEpisodes, 1e-9)

	assert.Equal(t, []CountEntry{{"1990", 2}, {"2000", 1}}, stats.ByDecade)

	require.NotEmpty(t, stats.TopGenres)
	assert.Equal(t, CountEntry{"Animation", 3}, stats.TopGenres[0])
}

func TestComputeStats_Filtered(t *testing.T) {
	s := fixtureService()
	stats := s.ComputeStats(Filter{Networks: []string{"Nickelodeon"}})
	assert.Equal(t, 1, stats.Titles)
	assert.Equal(t, 1, stats.Networks)
	require.NotNil(t, stats.MeanVote)
	assert.InDelta(t, 8.1, *stats.MeanVote, 1e-9)
}

func TestWriteDisplayCSV(t *testing.T) {
	s := fixtureService()
	var buf bytes.Buffer
	require.NoError(t, s.WriteDisplayCSV(&buf, Filter{Networks: []string{"Nickelodeon"}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Title,Network,Start Year,Decade,Genres,Rating,Votes,Seasons,Episodes,Popularity", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Hey Arnold!")
	assert.Contains(t, lines[1], "Nickelodeon")
	assert.Contains(t, lines[1], "1996")
}
