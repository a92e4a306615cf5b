package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFromTrakt(t *testing.T) {
	assert.Equal(t, KindMovie, KindFromTrakt("movie"))
	assert.Equal(t, KindSeries, KindFromTrakt("show"))
	assert.Equal(t, KindSeries, KindFromTrakt(""))
}

func TestKindOther(t *testing.T) {
	assert.Equal(t, KindSeries, KindMovie.Other())
	assert.Equal(t, KindMovie, KindSeries.Other())
}

func TestKindTMDBType(t *testing.T) {
	assert.Equal(t, "movie", KindMovie.TMDBType())
	assert.Equal(t, "tv", KindSeries.TMDBType())
}
