package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/errors"
)

// UpsertPost creates or updates a post node, keyed by its forum post id.
// Embeddings are stored as list properties and each view's layout is
// flattened onto the node.
func (r *Repository) UpsertPost(ctx context.Context, post *model.Post) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (p:Post {ed_post_id: $edPostID})
		SET p.ed_post_number = $edPostNumber,
		    p.title = $title,
		    p.content = $content,
		    p.author = $author,
		    p.date = $date,
		    p.attachment_urls = $attachmentURLs,
		    p.attachment_summaries = $attachmentSummaries,
		    p.github_url = $githubURL,
		    p.website_url = $websiteURL,
		    p.linkedin_url = $linkedinURL,
		    p.num_reactions = $numReactions,
		    p.num_replies = $numReplies,
		    p.topics = $topics,
		    p.tools = $tools,
		    p.llms = $llms,
		    p.impressiveness_score = $impressivenessScore,
		    p.content_embedding = $contentEmbedding,
		    p.topic_view_embedding = $topicViewEmbedding,
		    p.tool_view_embedding = $toolViewEmbedding,
		    p.llm_view_embedding = $llmViewEmbedding,
		    p.topic_x = $topicX, p.topic_y = $topicY, p.topic_cluster_id = $topicClusterID,
		    p.tool_x = $toolX, p.tool_y = $toolY, p.tool_cluster_id = $toolClusterID,
		    p.llm_x = $llmX, p.llm_y = $llmY, p.llm_cluster_id = $llmClusterID,
		    p.updated_at = datetime()
		RETURN p.ed_post_id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"edPostID":            post.EdPostID,
		"edPostNumber":        post.EdPostNumber,
		"title":               post.Title,
		"content":             post.Content,
		"author":              post.Author,
		"date":                post.Date,
		"attachmentURLs":      post.AttachmentURLs,
		"attachmentSummaries": post.AttachmentSummaries,
		"githubURL":           post.GitHubURL,
		"websiteURL":          post.WebsiteURL,
		"linkedinURL":         post.LinkedInURL,
		"numReactions":        post.NumReactions,
		"numReplies":          post.NumReplies,
		"topics":              post.Topics,
		"tools":               post.Tools,
		"llms":                post.LLMs,
		"impressivenessScore": post.ImpressivenessScore,
		"contentEmbedding":    floatList(post.ContentEmbedding),
		"topicViewEmbedding":  floatList(post.TopicViewEmbedding),
		"toolViewEmbedding":   floatList(post.ToolViewEmbedding),
		"llmViewEmbedding":    floatList(post.LLMViewEmbedding),
		"topicX":              post.TopicLayout.X,
		"topicY":              post.TopicLayout.Y,
		"topicClusterID":      post.TopicLayout.ClusterID,
		"toolX":               post.ToolLayout.X,
		"toolY":               post.ToolLayout.Y,
		"toolClusterID":       post.ToolLayout.ClusterID,
		"llmX":                post.LLMLayout.X,
		"llmY":                post.LLMLayout.Y,
		"llmClusterID":        post.LLMLayout.ClusterID,
	})
	if err != nil {
		return errors.NewGraphQueryFailed("upsert post", err)
	}

	if _, err := result.Single(ctx); err != nil {
		return errors.NewGraphQueryFailed("verify post upsert", err)
	}
	return nil
}

// GetAllPosts returns every stored post, ordered by forum post id.
// Embeddings are included.
func (r *Repository) GetAllPosts(ctx context.Context) ([]model.Post, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Post)
		RETURN p
		ORDER BY p.ed_post_id
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("list posts", err)
	}

	var posts []model.Post
	for result.Next(ctx) {
		node, ok := result.Record().Get("p")
		if !ok {
			continue
		}
		if n, ok := node.(neo4j.Node); ok {
			posts = append(posts, postFromProps(n.Props))
		}
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed("list posts", err)
	}
	return posts, nil
}

// GetPostByID returns one post by forum post id
func (r *Repository) GetPostByID(ctx context.Context, edPostID int) (*model.Post, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Post {ed_post_id: $edPostID})
		RETURN p
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"edPostID": edPostID,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("get post", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, errors.NewGraphQueryFailed("get post", err)
		}
		return nil, errors.NewPostNotFound(edPostID)
	}

	node, ok := result.Record().Get("p")
	if !ok {
		return nil, errors.NewPostNotFound(edPostID)
	}
	n, ok := node.(neo4j.Node)
	if !ok {
		return nil, errors.NewPostNotFound(edPostID)
	}
	post := postFromProps(n.Props)
	return &post, nil
}

// SearchPosts returns posts whose title, content, or author contains the
// query string, case-insensitively, ordered by impressiveness
func (r *Repository) SearchPosts(ctx context.Context, text string, limit int) ([]model.Post, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Post)
		WHERE toLower(p.title) CONTAINS toLower($text)
		   OR toLower(p.content) CONTAINS toLower($text)
		   OR toLower(p.author) CONTAINS toLower($text)
		RETURN p
		ORDER BY p.impressiveness_score DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"text":  text,
		"limit": limit,
	})
	if err != nil {
		return nil, errors.NewGraphQueryFailed("search posts", err)
	}

	var posts []model.Post
	for result.Next(ctx) {
		node, ok := result.Record().Get("p")
		if !ok {
			continue
		}
		if n, ok := node.(neo4j.Node); ok {
			posts = append(posts, postFromProps(n.Props))
		}
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed("search posts", err)
	}

	r.logger.Debug("Post search executed",
		zap.String("text", text),
		zap.Int("matched", len(posts)),
	)
	return posts, nil
}

// DeleteAllPosts removes every post and its relationships
func (r *Repository) DeleteAllPosts(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, `MATCH (p:Post) DETACH DELETE p`, nil); err != nil {
		return errors.NewGraphQueryFailed("delete all posts", err)
	}
	r.logger.Info("Deleted all posts")
	return nil
}

// GetStats counts what the store currently holds. Layouts counts posts
// that carry a topic-view position.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Post)
		WITH count(p) as posts,
		     count(p.topic_x) as layouts
		OPTIONAL MATCH ()-[s:SIMILAR_TO]->()
		RETURN posts, layouts, count(s) as similarities
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("get stats", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, errors.NewGraphQueryFailed("get stats", err)
	}

	return &Stats{
		Posts:        getIntFromRecord(record, "posts"),
		Layouts:      getIntFromRecord(record, "layouts"),
		Similarities: getIntFromRecord(record, "similarities"),
	}, nil
}

// postFromProps rebuilds a post from its node properties
func postFromProps(props map[string]interface{}) model.Post {
	post := model.Post{
		EdPostID:            intProp(props, "ed_post_id"),
		EdPostNumber:        intProp(props, "ed_post_number"),
		Title:               stringProp(props, "title"),
		Content:             stringProp(props, "content"),
		Author:              stringProp(props, "author"),
		Date:                stringProp(props, "date"),
		AttachmentURLs:      stringSliceProp(props, "attachment_urls"),
		AttachmentSummaries: stringProp(props, "attachment_summaries"),
		GitHubURL:           stringProp(props, "github_url"),
		WebsiteURL:          stringProp(props, "website_url"),
		LinkedInURL:         stringProp(props, "linkedin_url"),
		NumReactions:        intProp(props, "num_reactions"),
		NumReplies:          intProp(props, "num_replies"),
		Topics:              stringSliceProp(props, "topics"),
		Tools:               stringSliceProp(props, "tools"),
		LLMs:                stringSliceProp(props, "llms"),
		ImpressivenessScore: float64Prop(props, "impressiveness_score"),
		ContentEmbedding:    float32SliceProp(props, "content_embedding"),
		TopicViewEmbedding:  float32SliceProp(props, "topic_view_embedding"),
		ToolViewEmbedding:   float32SliceProp(props, "tool_view_embedding"),
		LLMViewEmbedding:    float32SliceProp(props, "llm_view_embedding"),
	}

	post.TopicLayout = layoutFromProps(props, "topic")
	post.ToolLayout = layoutFromProps(props, "tool")
	post.LLMLayout = layoutFromProps(props, "llm")
	return post
}

func layoutFromProps(props map[string]interface{}, prefix string) model.Layout {
	return model.Layout{
		X:         float64Prop(props, prefix+"_x"),
		Y:         float64Prop(props, prefix+"_y"),
		ClusterID: intProp(props, prefix+"_cluster_id"),
	}
}

func stringProp(props map[string]interface{}, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func intProp(props map[string]interface{}, key string) int {
	if i, ok := props[key].(int64); ok {
		return int(i)
	}
	return 0
}

func float64Prop(props map[string]interface{}, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0.0
}

func stringSliceProp(props map[string]interface{}, key string) []string {
	slice, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(slice))
	for _, v := range slice {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

func float32SliceProp(props map[string]interface{}, key string) []float32 {
	slice, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]float32, 0, len(slice))
	for _, v := range slice {
		if f, ok := v.(float64); ok {
			result = append(result, float32(f))
		}
	}
	return result
}
