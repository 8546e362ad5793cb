package ingestion

import "math"

// cosineSimilarity computes the cosine similarity between two vectors.
//
// Returns a value between -1 and 1; mismatched or empty vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot float64
	var magA float64
	var magB float64

	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0.0 || magB == 0.0 {
		return 0.0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// l2Norm computes the magnitude of a vector
func l2Norm(v []float32) float64 {
	sum := 0.0
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	return math.Sqrt(sum)
}

// l2Normalize returns a copy of v scaled to unit length. A zero vector is
// returned unchanged.
func l2Normalize(v []float32) []float32 {
	mag := l2Norm(v)
	result := make([]float32, len(v))
	if mag == 0.0 {
		copy(result, v)
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / mag)
	}
	return result
}
