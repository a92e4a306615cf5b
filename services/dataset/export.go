package dataset

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// displayRow is the filtered-CSV download shape: the dashboard's
// display columns under their pretty header names.
type displayRow struct {
	Title      string   `csv:"Title"`
	Network    *string  `csv:"Network"`
	StartYear  *int     `csv:"Start Year"`
	Decade     *int     `csv:"Decade"`
	Genres     string   `csv:"Genres"`
	Rating     *float64 `csv:"Rating"`
	Votes      *int     `csv:"Votes"`
	Seasons    *int     `csv:"Seasons"`
	Episodes   *int     `csv:"Episodes"`
	Popularity *float64 `csv:"Popularity"`
}

// WriteDisplayCSV writes the filtered view as the downloadable CSV.
func (s *Service) WriteDisplayCSV(w io.Writer, f Filter) error {
	recs := s.Apply(f)
	rows := make([]displayRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, displayRow{
			Title:      rec.Title,
			Network:    rec.NetworkNorm,
			StartYear:  rec.YearStart,
			Decade:     rec.Decade,
			Genres:     rec.TMDBGenres,
			Rating:     rec.TMDBVoteAverage,
			Votes:      rec.TMDBVoteCount,
			Seasons:    rec.TMDBNumberOfSeasons,
			Episodes:   rec.TMDBNumberOfEpisodes,
			Popularity: rec.TMDBPopularity,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write display csv: %w", err)
	}
	return nil
}
