package graph

import (
	"context"

	"go.uber.org/zap"

	"post-graph/backend/internal/model"
)

// LoadResult persists a full pipeline result: every post is upserted and
// the per-view similarity edge sets are replaced wholesale. Edge endpoints
// in the result are post indices; they are translated to forum post ids
// here. Individual post failures are logged and counted but do not abort
// the load.
func (r *Repository) LoadResult(ctx context.Context, result *model.Result) (*LoadSummary, error) {
	summary := &LoadSummary{}

	for i := range result.Posts {
		if err := r.UpsertPost(ctx, &result.Posts[i]); err != nil {
			summary.PostsFailed++
			r.logger.Warn("Failed to persist post",
				zap.Int("ed_post_id", result.Posts[i].EdPostID),
				zap.Error(err),
			)
			continue
		}
		summary.PostsInserted++
	}

	for _, view := range model.ViewModes() {
		edges := translateEdges(result.Posts, result.LayoutData.EdgesForView(view))
		if err := r.ReplaceSimilarities(ctx, view, edges); err != nil {
			summary.EdgesFailed += len(edges)
			r.logger.Warn("Failed to persist similarity edges",
				zap.String("view_mode", string(view)),
				zap.Error(err),
			)
			continue
		}
		summary.EdgesInserted += len(edges)
	}

	r.logger.Info("Result loaded into graph",
		zap.Int("posts_inserted", summary.PostsInserted),
		zap.Int("posts_failed", summary.PostsFailed),
		zap.Int("edges_inserted", summary.EdgesInserted),
		zap.Int("edges_failed", summary.EdgesFailed),
	)
	return summary, nil
}

// translateEdges maps index-based edges to forum-post-id edges, keeping
// the smaller id as source
func translateEdges(posts []model.Post, edges []model.SimilarityEdge) []model.SimilarityEdge {
	translated := make([]model.SimilarityEdge, 0, len(edges))
	for _, e := range edges {
		if e.Source < 0 || e.Source >= len(posts) || e.Target < 0 || e.Target >= len(posts) {
			continue
		}
		source := posts[e.Source].EdPostID
		target := posts[e.Target].EdPostID
		if source > target {
			source, target = target, source
		}
		translated = append(translated, model.SimilarityEdge{
			Source:     source,
			Target:     target,
			Similarity: e.Similarity,
		})
	}
	return translated
}
