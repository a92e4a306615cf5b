package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"toonarchive/models"
	"toonarchive/services/tmdb"
)

// fakeTMDB answers detail lookups from in-memory maps. Ids absent from
// both maps behave like a TMDB 404.
type fakeTMDB struct {
	movies     map[int64]*tmdb.Details
	tvs        map[int64]*tmdb.Details
	err        error
	movieCalls int
	tvCalls    int
}

func (f *fakeTMDB) MovieDetails(ctx context.Context, id int64) (*tmdb.Details, error) {
	f.movieCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.movies[id], nil
}

func (f *fakeTMDB) TVDetails(ctx context.Context, id int64) (*tmdb.Details, error) {
	f.tvCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tvs[id], nil
}

func newTestService(fake *fakeTMDB) *Service {
	s := NewService(fake)
	s.pace = rate.NewLimiter(rate.Inf, 1)
	return s
}

func i64ptr(v int64) *int64     { return &v }
func intptr(v int) *int         { return &v }
func f64ptr(v float64) *float64 { return &v }
func tvDetails(name string) *tmdb.Details {
	return &tmdb.Details{Name: name, FirstAirDate: "1999-01-01"}
}

func TestRun_MissingID(t *testing.T) {
	fake := &fakeTMDB{}
	recs, problems, err := newTestService(fake).Run(context.Background(), []models.ListItem{
		{Title: "Lost Toon", Type: "show"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NotNil(t, recs[0].TMDBError)
	assert.Equal(t, models.TMDBErrorMissingID, *recs[0].TMDBError)
	assert.Empty(t, recs[0].TMDBName)

	require.Len(t, problems, 1)
	assert.Equal(t, "Lost Toon", problems[0].Title)
	assert.Equal(t, models.TMDBErrorMissingID, problems[0].Problem)
	assert.Nil(t, problems[0].TMDBID)

	// no network traffic for rows without an id
	assert.Zero(t, fake.movieCalls)
	assert.Zero(t, fake.tvCalls)
}

func TestRun_SeriesFieldMapping(t *testing.T) {
	fake := &fakeTMDB{tvs: map[int64]*tmdb.Details{
		387: {
			Name:             "Hey Arnold!",
			FirstAirDate:     "1996-10-07",
			EpisodeRunTime:   []int{24, 11},
			Networks:         []tmdb.Network{{Name: "Nickelodeon"}, {Name: "Nicktoons"}},
			OriginCountry:    []string{"US", "CA"},
			NumberOfSeasons:  intptr(5),
			NumberOfEpisodes: intptr(100),
			Status:           "Ended",
			Genres:           []tmdb.Genre{{Name: "Animation"}, {Name: "Comedy"}},
			VoteAverage:      f64ptr(8.1),
			VoteCount:        intptr(900),
			Popularity:       f64ptr(30.5),
			OriginalLanguage: "en",
		},
	}}

	recs, problems, err := newTestService(fake).Run(context.Background(), []models.ListItem{
		{Title: "Hey Arnold!", Type: "show", TMDBID: i64ptr(387)},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, problems)

	rec := recs[0]
	assert.Nil(t, rec.TMDBError)
	assert.Equal(t, "tv", rec.TMDBDetectedType)
	assert.Equal(t, "Hey Arnold!", rec.TMDBName)
	assert.Equal(t, "1996-10-07", rec.TMDBFirstAirDate)
	assert.Equal(t, "Animation, Comedy", rec.TMDBGenres)
	require.NotNil(t, rec.TMDBRuntimeMin)
	assert.Equal(t, 24, *rec.TMDBRuntimeMin) // first entry wins
	require.NotNil(t, rec.TMDBNetwork)
	assert.Equal(t, "Nickelodeon", *rec.TMDBNetwork)
	require.NotNil(t, rec.TMDBOriginCountry)
	assert.Equal(t, "US", *rec.TMDBOriginCountry)
	assert.Equal(t, 100, *rec.TMDBNumberOfEpisodes)
}

func TestRun_MovieFieldMapping(t *testing.T) {
	fake := &fakeTMDB{movies: map[int64]*tmdb.Details{
		10386: {
			Title:       "The Iron Giant",
			ReleaseDate: "1999-08-06",
			Runtime:     intptr(86),
			Status:      "Released",
			Genres:      []tmdb.Genre{{Name: "Animation"}},
		},
	}}

	recs, _, err := newTestService(fake).Run(context.Background(), []models.ListItem{
		{Title: "The Iron Giant", Type: "movie", TMDBID: i64ptr(10386)},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "movie", rec.TMDBDetectedType)
	assert.Equal(t, "The Iron Giant", rec.TMDBName)
	assert.Equal(t, "1999-08-06", rec.TMDBFirstAirDate)
	require.NotNil(t, rec.TMDBRuntimeMin)
	assert.Equal(t, 86, *rec.TMDBRuntimeMin)
	assert.Nil(t, rec.TMDBNetwork)
	assert.Nil(t, rec.TMDBNumberOfEpisodes)
}

func TestRun_KindFallback(t *testing.T) {
	// Declared as a movie, but the id only resolves on the TV endpoint.
	fake := &fakeTMDB{tvs: map[int64]*tmdb.Details{
		77: tvDetails("Actually A Series"),
	}}

	recs, problems, err := newTestService(fake).Run(context.Background(), []models.ListItem{
		{Title: "Actually A Series", Type: "movie", TMDBID: i64ptr(77)},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, problems)

	assert.Equal(t, 1, fake.movieCalls)
	assert.Equal(t, 1, fake.tvCalls)
	assert.Equal(t, "tv", recs[0].TMDBDetectedType)
	assert.Equal(t, "Actually A Series", recs[0].TMDBName)
	// declared type is preserved alongside the detected one
	assert.Equal(t, "movie", recs[0].Type)
}

func TestRun_NotFoundIsolatesRow(t *testing.T) {
	fake := &fakeTMDB{tvs: map[int64]*tmdb.Details{
		1: tvDetails("First"),
		3: tvDetails("Third"),
	}}

	recs, problems, err := newTestService(fake).Run(context.Background(), []models.ListItem{
		{Title: "First", Type: "show", TMDBID: i64ptr(1)},
		{Title: "Ghost", Type: "show", TMDBID: i64ptr(2)},
		{Title: "Third", Type: "show", TMDBID: i64ptr(3)},
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Nil(t, recs[0].TMDBError)
	assert.Nil(t, recs[2].TMDBError)
	require.NotNil(t, recs[1].TMDBError)
	assert.Equal(t, models.TMDBErrorNotFound, *recs[1].TMDBError)

	require.Len(t, problems, 1)
	assert.Equal(t, 1, problems[0].RowIndex)
	assert.Equal(t, "Ghost", problems[0].Title)
	require.NotNil(t, problems[0].TMDBID)
	assert.Equal(t, int64(2), *problems[0].TMDBID)
}

func TestRun_TransientErrorFailsStage(t *testing.T) {
	fake := &fakeTMDB{err: errors.New("tmdb HTTP 500")}

	_, _, err := newTestService(fake).Run(context.Background(), []models.ListItem{
		{Title: "Unlucky", Type: "show", TMDBID: i64ptr(9)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unlucky")
}

func TestProblemsFromRecords(t *testing.T) {
	missing := models.TMDBErrorMissingID
	notFound := models.TMDBErrorNotFound
	recs := []models.EnrichedRecord{
		{ListItem: models.ListItem{Title: "OK", Type: "show"}},
		{ListItem: models.ListItem{Title: "No ID", Type: "show"}, TMDBError: &missing},
		{ListItem: models.ListItem{Title: "Ghost", Type: "movie", TMDBID: i64ptr(5)}, TMDBError: &notFound},
	}

	problems := ProblemsFromRecords(recs)
	require.Len(t, problems, 2)

	assert.Equal(t, 1, problems[0].RowIndex)
	assert.Equal(t, missing, problems[0].Problem)
	assert.Nil(t, problems[0].TMDBID)

	assert.Equal(t, 2, problems[1].RowIndex)
	assert.Equal(t, notFound, problems[1].Problem)
	require.NotNil(t, problems[1].TMDBID)
	assert.Equal(t, int64(5), *problems[1].TMDBID)
}
