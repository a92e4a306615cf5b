package recommend

import (
	"math"
)

// vector is a sparse L2-normalized term-weight vector. Keys are vocab
// term indices.
type vector map[int]float64

// vectorize turns profile texts into TF-IDF vectors over a shared
// vocabulary. IDF is smoothed (ln((1+n)/(1+df)) + 1) and every vector
// is L2-normalized, so cosine similarity reduces to a dot product.
func vectorize(texts []string) []vector {
	vocab := make(map[string]int)
	docTerms := make([]map[int]int, len(texts))
	df := make(map[int]int)

	for i, text := range texts {
		counts := make(map[int]int)
		for _, tok := range tokenize(text) {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
			}
			counts[idx]++
		}
		docTerms[i] = counts
		for idx := range counts {
			df[idx]++
		}
	}

	n := float64(len(texts))
	idf := make([]float64, len(vocab))
	for idx, count := range df {
		idf[idx] = math.Log((1+n)/float64(1+count)) + 1
	}

	vectors := make([]vector, len(texts))
	for i, counts := range docTerms {
		v := make(vector, len(counts))
		var norm float64
		for idx, tf := range counts {
			w := float64(tf) * idf[idx]
			v[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range v {
				v[idx] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// dot computes the cosine similarity of two normalized sparse vectors.
func dot(a, b vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		if bw, ok := b[idx]; ok {
			sum += w * bw
		}
	}
	return sum
}

// similarityMatrix computes the full symmetric pairwise matrix.
func similarityMatrix(vectors []vector) [][]float64 {
	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		sim[i][i] = dot(vectors[i], vectors[i])
		for j := i + 1; j < n; j++ {
			s := dot(vectors[i], vectors[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}
