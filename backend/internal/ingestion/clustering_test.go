package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"post-graph/backend/internal/model"
)

// blob generates n points tightly packed around a center
func blob(center [2]float64, n int) [][2]float64 {
	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{
			center[0] + 0.01*float64(i),
			center[1] - 0.01*float64(i),
		}
	}
	return points
}

func TestDBSCANClusterer_Empty(t *testing.T) {
	c := NewDBSCANClusterer(5)
	assert.Empty(t, c.Cluster(nil))
}

func TestDBSCANClusterer_TwoBlobsAndNoise(t *testing.T) {
	c := &DBSCANClusterer{MinClusterSize: 5, Eps: 0.5}

	points := blob([2]float64{0, 0}, 6)
	points = append(points, blob([2]float64{10, 10}, 6)...)
	points = append(points, [2]float64{100, -100})

	labels := c.Cluster(points)
	assert.Len(t, labels, 13)

	// First blob is cluster 0, second is cluster 1, outlier is noise
	for i := 0; i < 6; i++ {
		assert.Equal(t, 0, labels[i])
	}
	for i := 6; i < 12; i++ {
		assert.Equal(t, 1, labels[i])
	}
	assert.Equal(t, model.NoiseCluster, labels[12])
}

func TestDBSCANClusterer_SmallClustersDemoted(t *testing.T) {
	c := &DBSCANClusterer{MinClusterSize: 5, Eps: 0.5}

	// Three points are never enough for a cluster of five
	labels := c.Cluster(blob([2]float64{0, 0}, 3))
	for _, l := range labels {
		assert.Equal(t, model.NoiseCluster, l)
	}
}

func TestDBSCANClusterer_AutoEps(t *testing.T) {
	c := NewDBSCANClusterer(5)

	points := blob([2]float64{0, 0}, 8)
	points = append(points, blob([2]float64{50, 50}, 8)...)

	labels := c.Cluster(points)

	// With an automatically chosen radius the two dense blobs still come
	// out as two distinct clusters
	assert.Equal(t, labels[0], labels[7])
	assert.Equal(t, labels[8], labels[15])
	assert.NotEqual(t, labels[0], labels[8])
	assert.NotEqual(t, model.NoiseCluster, labels[0])
	assert.NotEqual(t, model.NoiseCluster, labels[8])
}

func TestDBSCANClusterer_CoincidentPoints(t *testing.T) {
	c := &DBSCANClusterer{MinClusterSize: 3}

	points := [][2]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	labels := c.Cluster(points)
	for _, l := range labels {
		assert.Equal(t, 0, l)
	}
}

func TestDBSCANClusterer_Deterministic(t *testing.T) {
	c := NewDBSCANClusterer(5)

	points := blob([2]float64{0, 0}, 7)
	points = append(points, blob([2]float64{5, 5}, 7)...)

	first := c.Cluster(points)
	second := c.Cluster(points)
	assert.Equal(t, first, second)
}
