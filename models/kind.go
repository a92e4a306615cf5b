package models

// Kind is the coarse category of a title. Every lookup branches
// exhaustively over the two variants; there is no third case.
type Kind int

const (
	KindSeries Kind = iota
	KindMovie
)

// KindFromTrakt maps a Trakt item type to a lookup kind. Anything that
// is not "movie" is treated as a series, matching the Trakt export
// which only carries "show" and "movie" rows.
func KindFromTrakt(traktType string) Kind {
	if traktType == "movie" {
		return KindMovie
	}
	return KindSeries
}

// Other returns the alternate kind, used for the fallback lookup when
// the declared kind comes back not-found.
func (k Kind) Other() Kind {
	if k == KindMovie {
		return KindSeries
	}
	return KindMovie
}

// TMDBType is the detected-type label written to the enriched export.
func (k Kind) TMDBType() string {
	if k == KindMovie {
		return "movie"
	}
	return "tv"
}
