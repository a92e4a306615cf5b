// Package enrich resolves TMDB metadata for every exported list row.
// A single row failing to resolve never aborts the batch; exhausting
// retries on a transient error does.
package enrich

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"toonarchive/models"
	"toonarchive/services/tmdb"
)

// detailsClient is the slice of the TMDB client the enricher needs.
type detailsClient interface {
	MovieDetails(ctx context.Context, id int64) (*tmdb.Details, error)
	TVDetails(ctx context.Context, id int64) (*tmdb.Details, error)
}

var _ detailsClient = (*tmdb.Client)(nil)

type Service struct {
	tmdb detailsClient
	pace *rate.Limiter
}

// NewService creates an enricher over the given TMDB client. Lookups
// are paced at one per 150ms to respect TMDB's informal rate limits.
func NewService(client detailsClient) *Service {
	return &Service{
		tmdb: client,
		pace: rate.NewLimiter(rate.Every(150*time.Millisecond), 1),
	}
}

// Run enriches every item in order, strictly sequentially. The returned
// slice is one-to-one with the input; rows that could not be resolved
// carry an error marker and an entry in the problems report.
func (s *Service) Run(ctx context.Context, items []models.ListItem) ([]models.EnrichedRecord, []models.Problem, error) {
	out := make([]models.EnrichedRecord, 0, len(items))
	var problems []models.Problem
	total := len(items)

	for i, it := range items {
		rec := models.EnrichedRecord{ListItem: it}

		if it.TMDBID == nil {
			marker := models.TMDBErrorMissingID
			rec.TMDBError = &marker
			out = append(out, rec)
			problems = append(problems, models.Problem{
				RowIndex:  i,
				Title:     it.Title,
				TraktType: it.Type,
				TMDBID:    nil,
				Problem:   marker,
			})
			continue
		}

		if err := s.pace.Wait(ctx); err != nil {
			return nil, nil, err
		}

		details, detected, err := s.lookup(ctx, models.KindFromTrakt(it.Type), *it.TMDBID)
		if err != nil {
			// Transient error that survived all retries: the whole
			// stage fails, unlike a per-row not-found.
			return nil, nil, fmt.Errorf("row %d (%s): %w", i, it.Title, err)
		}

		if details == nil {
			log.Printf("[enrich] tmdb id %d not found as tv or movie, skipping %q", *it.TMDBID, it.Title)
			marker := models.TMDBErrorNotFound
			rec.TMDBError = &marker
			out = append(out, rec)
			problems = append(problems, models.Problem{
				RowIndex:  i,
				Title:     it.Title,
				TraktType: it.Type,
				TMDBID:    it.TMDBID,
				Problem:   marker,
			})
			continue
		}

		populate(&rec, details, detected)
		out = append(out, rec)

		if (i+1)%10 == 0 || i+1 == total {
			log.Printf("[enrich] %d/%d", i+1, total)
		}
	}

	return out, problems, nil
}

// lookup tries the declared kind first, then falls back to the other
// kind when the first endpoint answers not-found. This recovers rows
// whose declared kind was wrong.
func (s *Service) lookup(ctx context.Context, kind models.Kind, id int64) (*tmdb.Details, models.Kind, error) {
	details, err := s.fetch(ctx, kind, id)
	if err != nil {
		return nil, kind, err
	}
	if details != nil {
		return details, kind, nil
	}

	other := kind.Other()
	details, err = s.fetch(ctx, other, id)
	if err != nil {
		return nil, other, err
	}
	return details, other, nil
}

func (s *Service) fetch(ctx context.Context, kind models.Kind, id int64) (*tmdb.Details, error) {
	switch kind {
	case models.KindMovie:
		return s.tmdb.MovieDetails(ctx, id)
	case models.KindSeries:
		return s.tmdb.TVDetails(ctx, id)
	}
	return nil, fmt.Errorf("unknown kind %d", kind)
}

// populate maps the detail schema onto the flat record. The mapping
// differs by detected kind: movies have a singular runtime and release
// date, series have first-air date, per-episode runtimes and counts.
func populate(rec *models.EnrichedRecord, d *tmdb.Details, kind models.Kind) {
	rec.TMDBDetectedType = kind.TMDBType()
	rec.TMDBStatus = d.Status
	rec.TMDBGenres = joinGenres(d.Genres)
	rec.TMDBVoteAverage = d.VoteAverage
	rec.TMDBVoteCount = d.VoteCount
	rec.TMDBPopularity = d.Popularity
	rec.TMDBOriginalLanguage = d.OriginalLanguage

	switch kind {
	case models.KindMovie:
		rec.TMDBName = d.Title
		rec.TMDBFirstAirDate = d.ReleaseDate
		rec.TMDBRuntimeMin = d.Runtime
	case models.KindSeries:
		rec.TMDBName = d.Name
		rec.TMDBFirstAirDate = d.FirstAirDate
		if len(d.EpisodeRunTime) > 0 {
			runtime := d.EpisodeRunTime[0]
			rec.TMDBRuntimeMin = &runtime
		}
		rec.TMDBNumberOfSeasons = d.NumberOfSeasons
		rec.TMDBNumberOfEpisodes = d.NumberOfEpisodes
		if len(d.Networks) > 0 && d.Networks[0].Name != "" {
			network := d.Networks[0].Name
			rec.TMDBNetwork = &network
		}
		if len(d.OriginCountry) > 0 && d.OriginCountry[0] != "" {
			country := d.OriginCountry[0]
			rec.TMDBOriginCountry = &country
		}
	}
}

func joinGenres(genres []tmdb.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return strings.Join(names, ", ")
}

// ProblemsFromRecords regenerates the side report from the error
// markers of the main export. The report is never authoritative.
func ProblemsFromRecords(recs []models.EnrichedRecord) []models.Problem {
	var problems []models.Problem
	for i, rec := range recs {
		if rec.TMDBError == nil {
			continue
		}
		p := models.Problem{
			RowIndex:  i,
			Title:     rec.Title,
			TraktType: rec.Type,
			Problem:   *rec.TMDBError,
		}
		if *rec.TMDBError == models.TMDBErrorNotFound {
			p.TMDBID = rec.TMDBID
		}
		problems = append(problems, p)
	}
	return problems
}
