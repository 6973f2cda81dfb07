package vector

import "math"

// CosineSimilarity computes the cosine similarity of two vectors.
//
// When lengths differ, only the overlapping prefix is compared. This is a
// documented leniency for the brute-force path, where records indexed under
// an older dimensionality can still participate in ranking instead of
// breaking every query. Either vector having zero norm yields 0.
func CosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
