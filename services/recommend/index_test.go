package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toonarchive/models"
)

func intptr(v int) *int       { return &v }
func strptr(s string) *string { return &s }

func record(title string, genres []string, network string, decade int) models.CleanRecord {
	rec := models.CleanRecord{
		EnrichedRecord: models.EnrichedRecord{ListItem: models.ListItem{Title: title, Type: "show"}},
		GenresList:     models.GenreList(genres),
	}
	if network != "" {
		rec.NetworkNorm = strptr(network)
	}
	if decade != 0 {
		rec.Decade = intptr(decade)
	}
	return rec
}

// fixtureIndex: A and B overlap heavily, C shares nothing with A.
func fixtureIndex() *Index {
	return BuildIndex([]models.CleanRecord{
		record("A", []string{"Comedy", "Action"}, "X", 1990),
		record("B", []string{"Comedy"}, "X", 1990),
		record("C", []string{"Drama"}, "Y", 2000),
	})
}

func TestBuildIndex_SymmetricMatrix(t *testing.T) {
	ix := fixtureIndex()
	require.Equal(t, 3, ix.Len())

	for i := 0; i < ix.Len(); i++ {
		assert.InDelta(t, 1.0, ix.sim[i][i], 1e-9, "diagonal %d", i)
		for j := 0; j < ix.Len(); j++ {
			assert.InDelta(t, ix.sim[j][i], ix.sim[i][j], 1e-12, "sim[%d][%d]", i, j)
			assert.GreaterOrEqual(t, ix.sim[i][j], 0.0)
			assert.LessOrEqual(t, ix.sim[i][j], 1.0+1e-9)
		}
	}
}

func TestRecommend_OrdersByOverlap(t *testing.T) {
	ix := fixtureIndex()
	got, err := ix.Recommend("A", 2, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "B", got[0].Record.Title)
	assert.Equal(t, "C", got[1].Record.Title)
	assert.Greater(t, got[0].Similarity, got[1].Similarity)
}

func TestRecommend_NeverReturnsSelf(t *testing.T) {
	ix := fixtureIndex()
	got, err := ix.Recommend("A", 10, nil)
	require.NoError(t, err)
	for _, n := range got {
		assert.NotEqual(t, "A", n.Record.Title)
	}
}

func TestRecommend_FilterConsistency(t *testing.T) {
	ix := fixtureIndex()
	got, err := ix.Recommend("A", 10, map[string]bool{"C": true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Record.Title)
}

func TestRecommend_UnknownTitle(t *testing.T) {
	ix := fixtureIndex()
	_, err := ix.Recommend("Nobody", 5, nil)
	require.ErrorIs(t, err, ErrTitleNotFound)
	assert.Contains(t, err.Error(), "Nobody")
}

func TestRecommend_NonPositiveK(t *testing.T) {
	ix := fixtureIndex()
	got, err := ix.Recommend("A", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommend_DuplicateTitleKeepsFirst(t *testing.T) {
	ix := BuildIndex([]models.CleanRecord{
		record("Doug", []string{"Comedy"}, "Nickelodeon", 1990),
		record("Doug", []string{"Drama"}, "ABC", 1990),
		record("Rugrats", []string{"Comedy"}, "Nickelodeon", 1990),
	})

	got, err := ix.Recommend("Doug", 5, nil)
	require.NoError(t, err)
	// neither copy of the query title comes back
	for _, n := range got {
		assert.NotEqual(t, "Doug", n.Record.Title)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "Rugrats", got[0].Record.Title)
}

func TestExplain(t *testing.T) {
	ix := fixtureIndex()
	text, err := ix.Explain("A")
	require.NoError(t, err)

	assert.Contains(t, text, "Recommended alongside A because")
	assert.Contains(t, text, "Comedy")
	assert.Contains(t, text, "aired on X")
	assert.Contains(t, text, "1990s")
}

func TestExplain_Fallback(t *testing.T) {
	ix := BuildIndex([]models.CleanRecord{
		record("Bare", nil, "", 0),
		record("Other", []string{"Comedy"}, "X", 1990),
	})

	text, err := ix.Explain("Bare")
	require.NoError(t, err)
	assert.Equal(t, "Titles similar to Bare based on their overall catalog profile.", text)
}

func TestExplain_UnknownTitle(t *testing.T) {
	ix := fixtureIndex()
	_, err := ix.Explain("Nobody")
	require.ErrorIs(t, err, ErrTitleNotFound)
}
