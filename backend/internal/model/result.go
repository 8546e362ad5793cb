package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// NoiseCluster is the reserved cluster id for points the density clusterer
// could not assign to any dense region
const NoiseCluster = -1

// NoiseClusterName labels the noise cluster in every view
const NoiseClusterName = "Uncategorized"

// SimilarityEdge connects two posts whose embeddings are close in one view.
// In a pipeline Result, Source and Target are indices into the Posts slice;
// the storage layer translates them to external post ids. The canonical form
// always stores the smaller identifier in Source.
type SimilarityEdge struct {
	Source     int     `json:"source"`
	Target     int     `json:"target"`
	Similarity float64 `json:"similarity"`
}

// LayoutData holds the per-view similarity edge lists for one pipeline run
type LayoutData struct {
	TopicSimilarities []SimilarityEdge `json:"topic_similarities"`
	ToolSimilarities  []SimilarityEdge `json:"tool_similarities"`
	LLMSimilarities   []SimilarityEdge `json:"llm_similarities"`
}

// EdgesForView returns the edge list for the given view mode
func (d *LayoutData) EdgesForView(view ViewMode) []SimilarityEdge {
	switch view {
	case ViewModeTopic:
		return d.TopicSimilarities
	case ViewModeTool:
		return d.ToolSimilarities
	case ViewModeLLM:
		return d.LLMSimilarities
	}
	return nil
}

// SetEdges stores the edge list for the given view mode
func (d *LayoutData) SetEdges(view ViewMode, edges []SimilarityEdge) {
	switch view {
	case ViewModeTopic:
		d.TopicSimilarities = edges
	case ViewModeTool:
		d.ToolSimilarities = edges
	case ViewModeLLM:
		d.LLMSimilarities = edges
	}
}

// ClusterNames maps cluster id to human-readable name, per view mode.
// Cluster ids are integers; JSON object keys carry their decimal form.
type ClusterNames struct {
	Topic map[int]string `json:"topic"`
	Tool  map[int]string `json:"tool"`
	LLM   map[int]string `json:"llm"`
}

// NamesForView returns the cluster name map for the given view mode
func (c *ClusterNames) NamesForView(view ViewMode) map[int]string {
	switch view {
	case ViewModeTopic:
		return c.Topic
	case ViewModeTool:
		return c.Tool
	case ViewModeLLM:
		return c.LLM
	}
	return nil
}

// SetNames stores the cluster name map for the given view mode
func (c *ClusterNames) SetNames(view ViewMode, names map[int]string) {
	switch view {
	case ViewModeTopic:
		c.Topic = names
	case ViewModeTool:
		c.Tool = names
	case ViewModeLLM:
		c.LLM = names
	}
}

// Result is the complete output of one pipeline run
type Result struct {
	Posts        []Post       `json:"posts"`
	LayoutData   LayoutData   `json:"layout_data"`
	ClusterNames ClusterNames `json:"cluster_names"`
}

// Save writes the result to disk as indented JSON
func (r *Result) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	return nil
}

// LoadResult reads a previously saved pipeline result from disk
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result from %s: %w", path, err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result file %s: %w", path, err)
	}
	return &result, nil
}
