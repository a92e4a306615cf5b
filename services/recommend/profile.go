// Package recommend builds a content-similarity index over the clean
// catalog and answers top-k neighbor queries with a natural-language
// rationale.
package recommend

import (
	"fmt"
	"strings"
	"unicode"

	"toonarchive/models"
)

// BuildProfileText synthesizes the weighted text a record is vectorized
// from. Genres and the normalized network count double relative to the
// decade token; missing fields contribute nothing.
func BuildProfileText(rec models.CleanRecord) string {
	var parts []string

	if genres := strings.Join(rec.GenresList, ", "); genres != "" {
		parts = append(parts, genres, genres)
	}
	if rec.NetworkNorm != nil && *rec.NetworkNorm != "" {
		parts = append(parts, *rec.NetworkNorm, *rec.NetworkNorm)
	}
	if rec.Decade != nil {
		parts = append(parts, fmt.Sprintf("decade_%d", *rec.Decade))
	}

	return strings.Join(parts, " ")
}

// tokenize lowercases the text and splits it into maximal runs of word
// characters and '&', so "Action & Adventure" tokenizes consistently
// and "decade_1990" stays one token.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '&' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
