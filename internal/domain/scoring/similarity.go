package scoring

import "math"

// Cosine returns the cosine similarity of two equal-length vectors.
// Returns 0 when either vector has zero magnitude, which also covers the
// division-by-zero case. Symmetric in its arguments.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
