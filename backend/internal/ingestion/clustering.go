package ingestion

import (
	"math"
	"sort"

	"post-graph/backend/internal/model"
)

// DensityClusterer assigns integer cluster ids to 2-D points. Real cluster
// ids are ≥ 0; model.NoiseCluster (-1) marks points not belonging to any
// dense region. Row i of the input corresponds to entry i of the output.
type DensityClusterer interface {
	Cluster(points [][2]float64) []int
}

// DefaultMinClusterSize matches the layout pipeline's clustering granularity
const DefaultMinClusterSize = 5

// DBSCANClusterer is a density-based clusterer over Euclidean distance in
// the projected plane. Eps == 0 selects the radius automatically from the
// k-distance distribution of the data.
type DBSCANClusterer struct {
	MinClusterSize int
	Eps            float64
}

// NewDBSCANClusterer creates a density clusterer with the given minimum
// cluster size and automatic radius selection
func NewDBSCANClusterer(minClusterSize int) *DBSCANClusterer {
	if minClusterSize < 1 {
		minClusterSize = DefaultMinClusterSize
	}
	return &DBSCANClusterer{MinClusterSize: minClusterSize}
}

// Cluster runs density clustering and returns one cluster id per point.
// Clusters are numbered from 0 in order of first-encountered member; points
// in no dense region, and clusters smaller than MinClusterSize, get -1.
// With fewer points than MinClusterSize everything is noise, which is a
// valid outcome rather than an error.
func (c *DBSCANClusterer) Cluster(points [][2]float64) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = model.NoiseCluster
	}
	if n == 0 {
		return labels
	}

	eps := c.Eps
	if eps == 0 {
		eps = c.autoEps(points)
	}
	if eps == 0 {
		// All points coincide; one cluster if it is large enough
		if n >= c.MinClusterSize {
			for i := range labels {
				labels[i] = 0
			}
		}
		return labels
	}

	// Classic DBSCAN: core points have at least MinClusterSize neighbors
	// (self included) within eps; clusters grow from cores in index order
	// so the labeling is deterministic.
	visited := make([]bool, n)
	nextCluster := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := c.regionQuery(points, i, eps)
		if len(neighbors) < c.MinClusterSize {
			continue // noise, may still be claimed as a border point later
		}

		labels[i] = nextCluster
		queue := append([]int(nil), neighbors...)
		for head := 0; head < len(queue); head++ {
			j := queue[head]
			if !visited[j] {
				visited[j] = true
				jNeighbors := c.regionQuery(points, j, eps)
				if len(jNeighbors) >= c.MinClusterSize {
					queue = append(queue, jNeighbors...)
				}
			}
			if labels[j] == model.NoiseCluster {
				labels[j] = nextCluster
			}
		}
		nextCluster++
	}

	c.demoteSmallClusters(labels)
	return labels
}

// regionQuery returns the indices of all points within eps of point i,
// including i itself
func (c *DBSCANClusterer) regionQuery(points [][2]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if euclidean2(points[i], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// autoEps picks the clustering radius as the median distance to each
// point's MinClusterSize-th nearest neighbor (the standard k-distance
// heuristic)
func (c *DBSCANClusterer) autoEps(points [][2]float64) float64 {
	n := len(points)
	k := c.MinClusterSize
	if k >= n {
		k = n - 1
	}
	if k < 1 {
		return 0
	}

	kDistances := make([]float64, 0, n)
	dists := make([]float64, n)
	for i := range points {
		dists = dists[:0]
		for j := range points {
			if i == j {
				continue
			}
			dists = append(dists, euclidean2(points[i], points[j]))
		}
		sort.Float64s(dists)
		kDistances = append(kDistances, dists[k-1])
	}
	sort.Float64s(kDistances)
	return kDistances[len(kDistances)/2]
}

// demoteSmallClusters reassigns clusters below the minimum size to noise
// and renumbers the survivors densely in first-encounter order
func (c *DBSCANClusterer) demoteSmallClusters(labels []int) {
	sizes := make(map[int]int)
	for _, l := range labels {
		if l != model.NoiseCluster {
			sizes[l]++
		}
	}

	renumber := make(map[int]int)
	next := 0
	for i, l := range labels {
		if l == model.NoiseCluster {
			continue
		}
		if sizes[l] < c.MinClusterSize {
			labels[i] = model.NoiseCluster
			continue
		}
		id, ok := renumber[l]
		if !ok {
			id = next
			renumber[l] = id
			next++
		}
		labels[i] = id
	}
}

func euclidean2(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}
