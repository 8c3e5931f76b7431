// Package biometric holds the face-matching primitives: a pure embedding
// comparator and an adapter around the external face-embedding extractor.
package biometric

import "math"

// DefaultThreshold is the default euclidean match threshold. Smaller is
// stricter. Deployments tune it via config; code should never hardcode it.
const DefaultThreshold = 0.5

// Distance computes the euclidean distance between two face embeddings.
// Absent vectors or mismatched dimensions return +Inf so a bad template can
// never produce a match, regardless of threshold.
func Distance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// IsMatch reports whether two embeddings are within threshold of each other.
func IsMatch(a, b []float32, threshold float64) bool {
	return Distance(a, b) <= threshold
}
