package ingestion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-graph/backend/internal/model"
)

// unitVec builds a 2-D unit vector at the given angle in degrees
func unitVec(degrees float64) []float32 {
	rad := degrees * math.Pi / 180
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

func TestComputeSimilarities_SinglePair(t *testing.T) {
	b := NewDefaultGraphBuilder()

	// Ten unit vectors in ten dimensions: rows 0 and 1 share similarity
	// 0.95, every other pair stays well below the threshold
	basis := func(i int) []float32 {
		vec := make([]float32, 10)
		vec[i] = 1
		return vec
	}
	pairMate := make([]float32, 10)
	pairMate[0] = 0.95
	pairMate[1] = float32(math.Sqrt(1 - 0.95*0.95))

	embeddings := [][]float32{basis(0), pairMate}
	for i := 2; i < 10; i++ {
		embeddings = append(embeddings, basis(i))
	}

	edges := b.ComputeSimilarities(embeddings)
	require.Len(t, edges, 1)
	assert.Equal(t, 0, edges[0].Source)
	assert.Equal(t, 1, edges[0].Target)
	assert.InDelta(t, 0.95, edges[0].Similarity, 1e-5)
}

func TestComputeSimilarities_MutualPairsDeduplicated(t *testing.T) {
	b := NewDefaultGraphBuilder()

	// Four near-identical vectors: every pair qualifies mutually but each
	// unordered pair must appear exactly once
	embeddings := [][]float32{
		unitVec(0), unitVec(1), unitVec(2), unitVec(3),
	}

	edges := b.ComputeSimilarities(embeddings)
	assert.Len(t, edges, 6)

	seen := make(map[[2]int]bool)
	for _, e := range edges {
		assert.Less(t, e.Source, e.Target)
		assert.Greater(t, e.Similarity, DefaultSimilarityThreshold)
		key := [2]int{e.Source, e.Target}
		assert.False(t, seen[key], "duplicate edge %v", key)
		seen[key] = true
	}
}

func TestComputeSimilarities_TopKBoundsCandidates(t *testing.T) {
	b := NewGraphBuilder(NewPCAProjector(), NewDBSCANClusterer(5), DefaultSimilarityThreshold, 1)

	embeddings := [][]float32{
		unitVec(0), unitVec(10), unitVec(20),
	}

	// With top-1 each row nominates only its nearest neighbor
	edges := b.ComputeSimilarities(embeddings)
	assert.Len(t, edges, 2)
}

func TestComputeSimilarities_ThresholdIsStrict(t *testing.T) {
	b := NewGraphBuilder(NewPCAProjector(), NewDBSCANClusterer(5), 0, DefaultSimilarityTopK)

	// Orthogonal vectors have similarity exactly 0, which must not pass a
	// strictly-greater-than threshold of 0
	edges := b.ComputeSimilarities([][]float32{unitVec(0), unitVec(90)})
	assert.Empty(t, edges)
}

func TestComputeSimilarities_TooFewRows(t *testing.T) {
	b := NewDefaultGraphBuilder()
	assert.Nil(t, b.ComputeSimilarities(nil))
	assert.Nil(t, b.ComputeSimilarities([][]float32{unitVec(0)}))
}

func TestComputeSimilarities_EdgesSorted(t *testing.T) {
	b := NewDefaultGraphBuilder()

	embeddings := [][]float32{
		unitVec(0), unitVec(2), unitVec(4), unitVec(6), unitVec(8),
	}

	edges := b.ComputeSimilarities(embeddings)
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		inOrder := prev.Source < cur.Source ||
			(prev.Source == cur.Source && prev.Target < cur.Target)
		assert.True(t, inOrder, "edges out of order at %d", i)
	}
}

func TestComputeLayout(t *testing.T) {
	b := NewDefaultGraphBuilder()

	var embeddings [][]float32
	for i := 0; i < 6; i++ {
		embeddings = append(embeddings, unitVec(float64(i)))
	}
	for i := 0; i < 6; i++ {
		embeddings = append(embeddings, unitVec(90+float64(i)))
	}

	positions, clusters, err := b.ComputeLayout(embeddings, model.ViewModeTopic)
	require.NoError(t, err)
	assert.Len(t, positions, 12)
	assert.Len(t, clusters, 12)
}

func TestComputeLayout_AllNoiseIsValid(t *testing.T) {
	b := NewDefaultGraphBuilder()

	// Three spread-out points cannot form a cluster of five
	embeddings := [][]float32{unitVec(0), unitVec(120), unitVec(240)}

	_, clusters, err := b.ComputeLayout(embeddings, model.ViewModeTool)
	require.NoError(t, err)
	for _, c := range clusters {
		assert.Equal(t, model.NoiseCluster, c)
	}
}
