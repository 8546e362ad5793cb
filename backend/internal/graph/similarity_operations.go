package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/errors"
)

// ReplaceSimilarities swaps out all similarity edges for one view mode.
// Edge endpoints are forum post ids with the smaller id as source. The
// previous edge set for the view is removed first so reruns never
// accumulate stale edges.
func (r *Repository) ReplaceSimilarities(ctx context.Context, view model.ViewMode, edges []model.SimilarityEdge) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	deleteQuery := `
		MATCH ()-[s:SIMILAR_TO {view_mode: $viewMode}]->()
		DELETE s
	`
	if _, err := session.Run(ctx, deleteQuery, map[string]interface{}{
		"viewMode": string(view),
	}); err != nil {
		return errors.NewGraphQueryFailed("delete similarities", err)
	}

	if len(edges) == 0 {
		return nil
	}

	edgeParams := make([]interface{}, 0, len(edges))
	for _, e := range edges {
		edgeParams = append(edgeParams, map[string]interface{}{
			"source":     e.Source,
			"target":     e.Target,
			"similarity": e.Similarity,
		})
	}

	createQuery := `
		UNWIND $edges as edge
		MATCH (a:Post {ed_post_id: edge.source})
		MATCH (b:Post {ed_post_id: edge.target})
		CREATE (a)-[:SIMILAR_TO {view_mode: $viewMode, similarity: edge.similarity}]->(b)
	`
	if _, err := session.Run(ctx, createQuery, map[string]interface{}{
		"viewMode": string(view),
		"edges":    edgeParams,
	}); err != nil {
		return errors.NewGraphQueryFailed("create similarities", err)
	}

	r.logger.Info("Similarity edges replaced",
		zap.String("view_mode", string(view)),
		zap.Int("edges", len(edges)),
	)
	return nil
}

// GetGraphData returns the nodes and edges for one view mode. Node
// payloads carry that view's layout and omit embeddings.
func (r *Repository) GetGraphData(ctx context.Context, view model.ViewMode) (*GraphData, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	nodeQuery := `
		MATCH (p:Post)
		RETURN p
		ORDER BY p.ed_post_id
	`
	result, err := session.Run(ctx, nodeQuery, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list graph nodes", err)
	}

	data := &GraphData{
		Nodes: []GraphNode{},
		Edges: []model.SimilarityEdge{},
	}
	for result.Next(ctx) {
		node, ok := result.Record().Get("p")
		if !ok {
			continue
		}
		if n, ok := node.(neo4j.Node); ok {
			data.Nodes = append(data.Nodes, graphNodeFromProps(n.Props, view))
		}
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed("list graph nodes", err)
	}

	edgeQuery := `
		MATCH (a:Post)-[s:SIMILAR_TO {view_mode: $viewMode}]->(b:Post)
		RETURN a.ed_post_id as source, b.ed_post_id as target, s.similarity as similarity
		ORDER BY source, target
	`
	result, err = session.Run(ctx, edgeQuery, map[string]interface{}{
		"viewMode": string(view),
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list graph edges", err)
	}

	for result.Next(ctx) {
		record := result.Record()
		data.Edges = append(data.Edges, model.SimilarityEdge{
			Source:     getIntFromRecord(record, "source"),
			Target:     getIntFromRecord(record, "target"),
			Similarity: getFloat64FromRecord(record, "similarity"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed("list graph edges", err)
	}

	return data, nil
}

// graphNodeFromProps builds a view-specific node payload from post
// properties
func graphNodeFromProps(props map[string]interface{}, view model.ViewMode) GraphNode {
	layout := layoutFromProps(props, string(view))
	return GraphNode{
		EdPostID:            intProp(props, "ed_post_id"),
		EdPostNumber:        intProp(props, "ed_post_number"),
		Title:               stringProp(props, "title"),
		Content:             stringProp(props, "content"),
		Author:              stringProp(props, "author"),
		Date:                stringProp(props, "date"),
		AttachmentURLs:      stringSliceProp(props, "attachment_urls"),
		GitHubURL:           stringProp(props, "github_url"),
		WebsiteURL:          stringProp(props, "website_url"),
		LinkedInURL:         stringProp(props, "linkedin_url"),
		Topics:              stringSliceProp(props, "topics"),
		Tools:               stringSliceProp(props, "tools"),
		LLMs:                stringSliceProp(props, "llms"),
		ImpressivenessScore: float64Prop(props, "impressiveness_score"),
		X:                   layout.X,
		Y:                   layout.Y,
		ClusterID:           layout.ClusterID,
	}
}
