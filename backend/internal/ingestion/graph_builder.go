package ingestion

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/logger"
)

const (
	// DefaultSimilarityThreshold is the minimum score for an edge
	DefaultSimilarityThreshold = 0.6
	// DefaultSimilarityTopK bounds edge candidates per node
	DefaultSimilarityTopK = 5
)

// GraphBuilder computes 2-D layouts with cluster assignments and similarity
// edge lists from a view's embedding matrix
type GraphBuilder struct {
	projector Projector2D
	clusterer DensityClusterer
	threshold float64
	topK      int
	logger    *zap.Logger
}

// NewGraphBuilder creates a graph builder over the given numerical
// primitives. Any conforming Projector2D / DensityClusterer can be
// substituted, including deterministic stubs for tests.
func NewGraphBuilder(projector Projector2D, clusterer DensityClusterer, threshold float64, topK int) *GraphBuilder {
	return &GraphBuilder{
		projector: projector,
		clusterer: clusterer,
		threshold: threshold,
		topK:      topK,
		logger:    logger.Get(),
	}
}

// NewDefaultGraphBuilder wires the default projection and clustering
// implementations with the standard thresholds
func NewDefaultGraphBuilder() *GraphBuilder {
	return NewGraphBuilder(
		NewPCAProjector(),
		NewDBSCANClusterer(DefaultMinClusterSize),
		DefaultSimilarityThreshold,
		DefaultSimilarityTopK,
	)
}

// ComputeLayout projects the embeddings to 2-D and assigns density-based
// cluster ids. Both outputs preserve row order: row i of the embeddings
// corresponds to entry i of positions and clusters. A result where every
// point is noise (-1) is valid, not an error.
func (g *GraphBuilder) ComputeLayout(embeddings [][]float32, view model.ViewMode) ([][2]float64, []int, error) {
	positions, err := g.projector.Project(embeddings)
	if err != nil {
		return nil, nil, fmt.Errorf("projection failed for %s view: %w", view, err)
	}
	if len(positions) != len(embeddings) {
		return nil, nil, fmt.Errorf("projector returned %d positions for %d embeddings", len(positions), len(embeddings))
	}

	clusters := g.clusterer.Cluster(positions)
	if len(clusters) != len(embeddings) {
		return nil, nil, fmt.Errorf("clusterer returned %d labels for %d embeddings", len(clusters), len(embeddings))
	}

	nClusters := 0
	nNoise := 0
	seen := make(map[int]bool)
	for _, c := range clusters {
		if c == model.NoiseCluster {
			nNoise++
		} else if !seen[c] {
			seen[c] = true
			nClusters++
		}
	}
	g.logger.Info("Computed layout",
		zap.String("view", string(view)),
		zap.Int("posts", len(embeddings)),
		zap.Int("clusters", nClusters),
		zap.Int("noise_points", nNoise),
	)

	return positions, clusters, nil
}

// ComputeSimilarities builds the similarity edge list for one view.
//
// For each row the topK most similar other rows are edge candidates; a
// candidate becomes an edge only when its cosine similarity strictly
// exceeds the threshold. Edges are canonical — smaller index first — so a
// mutual top-k pair yields one edge, and the kept score is always the one
// computed from the lower-indexed row. Top-k bounds the edge count per node
// while the threshold keeps weak connections out.
func (g *GraphBuilder) ComputeSimilarities(embeddings [][]float32) []model.SimilarityEdge {
	n := len(embeddings)
	if n < 2 {
		return nil
	}

	// Full pairwise similarity matrix; symmetric, so the canonical score
	// sims[min][max] is well defined
	sims := make([][]float64, n)
	for i := 0; i < n; i++ {
		sims[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := cosineSimilarity(embeddings[i], embeddings[j])
			sims[i][j] = s
			sims[j][i] = s
		}
	}

	type pair struct{ a, b int }
	edges := make(map[pair]float64)

	candidates := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		candidates = candidates[:0]
		for j := 0; j < n; j++ {
			if j != i {
				candidates = append(candidates, j)
			}
		}
		sort.SliceStable(candidates, func(x, y int) bool {
			return sims[i][candidates[x]] > sims[i][candidates[y]]
		})

		topK := g.topK
		if topK > len(candidates) {
			topK = len(candidates)
		}
		for _, j := range candidates[:topK] {
			if sims[i][j] > g.threshold {
				a, b := i, j
				if a > b {
					a, b = b, a
				}
				edges[pair{a, b}] = sims[a][b]
			}
		}
	}

	result := make([]model.SimilarityEdge, 0, len(edges))
	for p, score := range edges {
		result = append(result, model.SimilarityEdge{Source: p.a, Target: p.b, Similarity: score})
	}
	sort.Slice(result, func(x, y int) bool {
		if result[x].Source != result[y].Source {
			return result[x].Source < result[y].Source
		}
		return result[x].Target < result[y].Target
	})
	return result
}
