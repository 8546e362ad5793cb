package ingestion

import (
	"fmt"
	"math"
	"math/rand"
)

// Projector2D reduces an N×D embedding matrix to N 2-D positions.
//
// Implementations must be deterministic (fixed seed), treat cosine distance
// as the input metric, and preserve row order: row i of the input maps to
// row i of the output.
type Projector2D interface {
	Project(embeddings [][]float32) ([][2]float64, error)
}

// pcaSeed fixes the random initialization so layouts are reproducible
const pcaSeed = 42

// pcaIterations bounds the power iteration; convergence is usually much
// faster but the bound keeps worst-case cost predictable
const pcaIterations = 200

const pcaTolerance = 1e-10

// PCAProjector projects embeddings onto their top two principal components
// using deterministic power iteration. The inputs are unit-normalized, so
// Euclidean geometry on them is monotone in cosine distance and the
// projection respects the cosine metric the embeddings were built for.
type PCAProjector struct{}

// NewPCAProjector creates the default deterministic projector
func NewPCAProjector() *PCAProjector {
	return &PCAProjector{}
}

// Project computes the top two principal components of the mean-centered
// embedding matrix and returns each row's coordinates along them
func (p *PCAProjector) Project(embeddings [][]float32) ([][2]float64, error) {
	n := len(embeddings)
	if n == 0 {
		return nil, nil
	}
	dims := len(embeddings[0])
	for i, row := range embeddings {
		if len(row) != dims {
			return nil, fmt.Errorf("embedding row %d has %d dimensions, want %d", i, len(row), dims)
		}
	}

	// Mean-center in float64
	centered := make([][]float64, n)
	mean := make([]float64, dims)
	for _, row := range embeddings {
		for j, v := range row {
			mean[j] += float64(v)
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	for i, row := range embeddings {
		centered[i] = make([]float64, dims)
		for j, v := range row {
			centered[i][j] = float64(v) - mean[j]
		}
	}

	pc1 := principalComponent(centered, nil)
	pc2 := principalComponent(centered, pc1)

	positions := make([][2]float64, n)
	for i, row := range centered {
		positions[i][0] = dot64(row, pc1)
		positions[i][1] = dot64(row, pc2)
	}
	return positions, nil
}

// principalComponent runs power iteration on the implicit covariance matrix
// XᵀX, deflating against an already found component when given one
func principalComponent(x [][]float64, deflate []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	dims := len(x[0])

	rng := rand.New(rand.NewSource(pcaSeed))
	v := make([]float64, dims)
	for j := range v {
		v[j] = rng.NormFloat64()
	}
	if deflate != nil {
		subtractProjection(v, deflate)
	}
	normalize64(v)

	next := make([]float64, dims)
	for iter := 0; iter < pcaIterations; iter++ {
		// next = Xᵀ(Xv), O(N·D) without materializing the covariance
		for j := range next {
			next[j] = 0
		}
		for _, row := range x {
			rv := dot64(row, v)
			for j, xj := range row {
				next[j] += rv * xj
			}
		}
		if deflate != nil {
			subtractProjection(next, deflate)
		}
		norm := normalize64(next)
		if norm == 0 {
			// Degenerate direction: all variance already explained
			break
		}

		diff := 0.0
		for j := range v {
			d := next[j] - v[j]
			diff += d * d
		}
		copy(v, next)
		if diff < pcaTolerance {
			break
		}
	}

	// Fix the sign so the largest-magnitude coefficient is positive,
	// keeping orientation stable across runs
	maxIdx := 0
	for j := range v {
		if math.Abs(v[j]) > math.Abs(v[maxIdx]) {
			maxIdx = j
		}
	}
	if v[maxIdx] < 0 {
		for j := range v {
			v[j] = -v[j]
		}
	}
	return v
}

func dot64(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// subtractProjection removes the component of v along unit vector u
func subtractProjection(v, u []float64) {
	p := dot64(v, u)
	for j := range v {
		v[j] -= p * u[j]
	}
}

// normalize64 scales v to unit length in place and returns the prior norm
func normalize64(v []float64) float64 {
	norm := math.Sqrt(dot64(v, v))
	if norm == 0 {
		return 0
	}
	for j := range v {
		v[j] /= norm
	}
	return norm
}
