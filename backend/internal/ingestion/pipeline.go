package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/logger"
)

// headerPostMarker identifies the course announcement thread that anchors
// the submission megathread; it is not itself a submission
const headerPostMarker = "Extra Credit Opportunity"

var (
	githubURLPattern   = regexp.MustCompile(`github\.com/[\w-]+(?:/[\w-]+)?`)
	linkedinURLPattern = regexp.MustCompile(`linkedin\.com/in/[\w-]+`)
	websiteURLPattern  = regexp.MustCompile(`https?://[\w.-]+\.[A-Za-z]+(?:/[\w.\-/]*)?`)
)

// websiteExcludedHosts are never reported as a personal website
var websiteExcludedHosts = []string{"github.com", "linkedin.com", "edstem.org"}

// Pipeline runs the batch ingestion over the full post collection:
// normalize, categorize, embed, lay out, assemble. Stages are strictly
// sequential; each consumes the complete output of the previous one, and a
// failure anywhere aborts the run with no partial result.
type Pipeline struct {
	categorizer *Categorizer
	embedder    *Embedder
	builder     *GraphBuilder
	logger      *zap.Logger
}

// NewPipeline creates a pipeline over the given components
func NewPipeline(categorizer *Categorizer, embedder *Embedder, builder *GraphBuilder) *Pipeline {
	return &Pipeline{
		categorizer: categorizer,
		embedder:    embedder,
		builder:     builder,
		logger:      logger.Get(),
	}
}

// Run executes the full pipeline over rawPosts and returns the assembled
// result document. Posts are processed wholesale: every run recomputes all
// layouts, cluster names, and edges from scratch.
func (p *Pipeline) Run(ctx context.Context, rawPosts []model.RawPost) (*model.Result, error) {
	runID := uuid.New().String()
	p.logger.Info("Starting ingestion pipeline",
		zap.String("run_id", runID),
		zap.Int("raw_posts", len(rawPosts)),
	)

	posts, err := p.normalizePosts(rawPosts)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("pipeline run %s: no posts to process", runID)
	}
	p.logger.Info("Normalized posts", zap.Int("posts", len(posts)), zap.Int("skipped", len(rawPosts)-len(posts)))

	p.categorizePosts(posts)

	if err := p.embedPosts(ctx, posts); err != nil {
		return nil, fmt.Errorf("pipeline run %s: %w", runID, err)
	}

	result := &model.Result{Posts: posts}
	for _, view := range model.ViewModes() {
		if err := p.buildView(result, view); err != nil {
			return nil, fmt.Errorf("pipeline run %s: %w", runID, err)
		}
	}

	p.logger.Info("Pipeline complete",
		zap.String("run_id", runID),
		zap.Int("posts", len(result.Posts)),
		zap.Int("topic_edges", len(result.LayoutData.TopicSimilarities)),
		zap.Int("tool_edges", len(result.LayoutData.ToolSimilarities)),
		zap.Int("llm_edges", len(result.LayoutData.LLMSimilarities)),
	)
	return result, nil
}

// normalizePosts validates the raw posts, skips the header thread, and
// converts markup to plain text
func (p *Pipeline) normalizePosts(rawPosts []model.RawPost) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(rawPosts))
	for i := range rawPosts {
		raw := &rawPosts[i]
		if strings.Contains(raw.Title, headerPostMarker) {
			continue
		}
		if err := raw.Validate(); err != nil {
			return nil, fmt.Errorf("invalid input post: %w", err)
		}

		post := model.Post{
			EdPostID:     raw.ID,
			EdPostNumber: raw.Number,
			Title:        NormalizeDocument(raw.Title),
			Content:      NormalizeDocument(raw.Content),
			Author:       raw.Author,
			Date:         raw.Date,
			NumReactions: raw.NumReactions,
			NumReplies:   raw.NumReplies,
		}

		post.AttachmentURLs = make([]string, 0, len(raw.AttachmentsDownloaded))
		filenames := make([]string, 0, len(raw.AttachmentsDownloaded))
		for _, att := range raw.AttachmentsDownloaded {
			post.AttachmentURLs = append(post.AttachmentURLs, att.URL)
			name := att.OriginalFilename
			if name == "" {
				name = "file"
			}
			filenames = append(filenames, name)
		}
		switch {
		case raw.AttachmentText != "":
			post.AttachmentSummaries = raw.AttachmentText
		case len(filenames) > 0:
			post.AttachmentSummaries = "Attachments: " + strings.Join(filenames, ", ")
		}

		// URL extraction works on the raw markup, where hrefs still exist
		post.GitHubURL = githubURLPattern.FindString(raw.Content)
		post.LinkedInURL = linkedinURLPattern.FindString(raw.Content)
		post.WebsiteURL = findPersonalWebsite(raw.Content)

		posts = append(posts, post)
	}
	return posts, nil
}

// findPersonalWebsite returns the first URL that is not a code-hosting,
// professional-network, or forum link
func findPersonalWebsite(content string) string {
	for _, url := range websiteURLPattern.FindAllString(content, -1) {
		host := url
		if idx := strings.Index(host, "://"); idx >= 0 {
			host = host[idx+3:]
		}
		if idx := strings.IndexByte(host, '/'); idx >= 0 {
			host = host[:idx]
		}
		excluded := false
		for _, ex := range websiteExcludedHosts {
			if host == ex || strings.HasSuffix(host, "."+ex) {
				excluded = true
				break
			}
		}
		if !excluded {
			return url
		}
	}
	return ""
}

// categorizePosts fills the derived category fields for every post
func (p *Pipeline) categorizePosts(posts []model.Post) {
	for i := range posts {
		post := &posts[i]
		post.Topics = p.categorizer.ExtractTopics(post.Content)
		post.Tools = p.categorizer.ExtractTools(post.Content)
		post.LLMs = p.categorizer.ExtractLLMs(post.Content)
		post.ImpressivenessScore = p.categorizer.CalculateImpressiveness(post)
	}
	p.logger.Info("Categorized posts", zap.Int("posts", len(posts)))
}

// embedPosts generates all four embeddings per post. The whole collection
// must be embedded before any layout work can start.
func (p *Pipeline) embedPosts(ctx context.Context, posts []model.Post) error {
	for i := range posts {
		embeddings, err := p.embedder.EmbedPost(ctx, &posts[i])
		if err != nil {
			return err
		}
		posts[i].ContentEmbedding = embeddings.Content
		posts[i].TopicViewEmbedding = embeddings.TopicView
		posts[i].ToolViewEmbedding = embeddings.ToolView
		posts[i].LLMViewEmbedding = embeddings.LLMView

		if (i+1)%20 == 0 {
			p.logger.Info("Embedding progress", zap.Int("done", i+1), zap.Int("total", len(posts)))
		}
	}
	p.logger.Info("Generated embeddings", zap.Int("posts", len(posts)))
	return nil
}

// buildView computes layout, cluster names, and similarity edges for one
// view mode and stores them on the result
func (p *Pipeline) buildView(result *model.Result, view model.ViewMode) error {
	embeddings := make([][]float32, len(result.Posts))
	for i := range result.Posts {
		embeddings[i] = result.Posts[i].EmbeddingForView(view)
	}

	positions, clusters, err := p.builder.ComputeLayout(embeddings, view)
	if err != nil {
		return err
	}

	for i := range result.Posts {
		result.Posts[i].SetLayout(view, model.Layout{
			X:         positions[i][0],
			Y:         positions[i][1],
			ClusterID: clusters[i],
		})
	}

	result.ClusterNames.SetNames(view, p.nameClusters(result.Posts, clusters, view))
	result.LayoutData.SetEdges(view, p.builder.ComputeSimilarities(embeddings))
	return nil
}

// nameClusters derives a human-readable name per cluster id: the most
// frequent qualifying category label among member posts, ties broken by
// first-encountered order. Clusters with no qualifying labels get a
// synthetic "Cluster {id}" name; the noise cluster is always
// "Uncategorized".
func (p *Pipeline) nameClusters(posts []model.Post, clusters []int, view model.ViewMode) map[int]string {
	names := make(map[int]string)

	type labelCount struct {
		count int
		order int // first-encountered position, for tie-breaking
	}
	counts := make(map[int]map[string]*labelCount)

	for i, clusterID := range clusters {
		if clusterID == model.NoiseCluster {
			names[model.NoiseCluster] = model.NoiseClusterName
			continue
		}
		if _, ok := counts[clusterID]; !ok {
			counts[clusterID] = make(map[string]*labelCount)
			names[clusterID] = fmt.Sprintf("Cluster %d", clusterID)
		}
		for _, label := range posts[i].LabelsForView(view) {
			if label == FallbackTool || label == FallbackLLM {
				continue
			}
			lc, ok := counts[clusterID][label]
			if !ok {
				lc = &labelCount{order: len(counts[clusterID])}
				counts[clusterID][label] = lc
			}
			lc.count++
		}
	}

	for clusterID, labels := range counts {
		best := ""
		for label, lc := range labels {
			if best == "" {
				best = label
				continue
			}
			bc := labels[best]
			if lc.count > bc.count || (lc.count == bc.count && lc.order < bc.order) {
				best = label
			}
		}
		if best != "" {
			names[clusterID] = best
		}
	}

	return names
}
