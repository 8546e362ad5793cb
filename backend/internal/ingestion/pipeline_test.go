package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-graph/backend/internal/model"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(
		NewCategorizer(DefaultVocabulary()),
		NewEmbedder(&stubEmbedder{dims: 8}, DefaultFusionAlpha),
		NewDefaultGraphBuilder(),
	)
}

func testRawPosts() []model.RawPost {
	return []model.RawPost{
		{
			ID:     1,
			Number: 1,
			Title:  "Extra Credit Opportunity: Special Participation E",
			// the megathread header itself, must be skipped
			Content: "<paragraph>Post your submissions below</paragraph>",
			Author:  "Course Staff",
			Date:    "2025-11-01T10:00:00Z",
		},
		{
			ID:           2,
			Number:       7,
			Title:        "Special Participation E: Transformer Quiz",
			Content:      `<paragraph>A quiz about transformer attention, see <link href="https://github.com/student/quiz">github.com/student/quiz</link></paragraph>`,
			Author:       "Ada",
			Date:         "2025-11-02T10:00:00Z",
			NumReactions: 4,
			NumReplies:   1,
		},
		{
			ID:      3,
			Number:  9,
			Title:   "Special Participation E: CNN Flashcards",
			Content: "<paragraph>Flashcards with Claude covering convolution and pooling</paragraph>",
			Author:  "Grace",
			Date:    "2025-11-03T10:00:00Z",
			AttachmentsDownloaded: []model.RawAttachment{
				{URL: "https://files.example.com/cards.pdf", OriginalFilename: "cards.pdf"},
			},
			AttachmentText: "flashcard deck about cnns",
		},
		{
			ID:      4,
			Number:  11,
			Title:   "Special Participation E: SGD Visualizer",
			Content: "<paragraph>Interactive gradient descent visualization in a notebook</paragraph>",
			Author:  "Alan",
			Date:    "2025-11-04T10:00:00Z",
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	p := newTestPipeline()

	result, err := p.Run(context.Background(), testRawPosts())
	require.NoError(t, err)

	// Header thread skipped
	require.Len(t, result.Posts, 3)
	for _, post := range result.Posts {
		assert.NotEqual(t, 1, post.EdPostID)
	}

	quiz := result.Posts[0]
	assert.Equal(t, 2, quiz.EdPostID)
	assert.Equal(t, "github.com/student/quiz", quiz.GitHubURL)
	assert.Contains(t, quiz.Topics, "Transformers")
	assert.Contains(t, quiz.Tools, "quiz")
	assert.Greater(t, quiz.ImpressivenessScore, 8.0)

	cards := result.Posts[1]
	assert.Equal(t, "flashcard deck about cnns", cards.AttachmentSummaries)
	assert.Contains(t, cards.LLMs, "Claude")
	assert.Contains(t, cards.Topics, "CNN Basics")

	// Every post carries four unit embeddings and three layouts
	for _, post := range result.Posts {
		assert.Len(t, post.ContentEmbedding, 8)
		assert.Len(t, post.TopicViewEmbedding, 8)
		assert.Len(t, post.ToolViewEmbedding, 8)
		assert.Len(t, post.LLMViewEmbedding, 8)
		for _, view := range model.ViewModes() {
			layout := post.LayoutForView(view)
			assert.GreaterOrEqual(t, layout.ClusterID, model.NoiseCluster)
		}
	}

	// Three posts cannot satisfy the minimum cluster size, so every view
	// names only the noise cluster
	for _, view := range model.ViewModes() {
		names := result.ClusterNames.NamesForView(view)
		assert.Equal(t, model.NoiseClusterName, names[model.NoiseCluster])
	}
}

func TestPipeline_Run_NoPosts(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Run(context.Background(), nil)
	assert.Error(t, err)

	// Only the header thread: nothing survives normalization
	_, err = p.Run(context.Background(), testRawPosts()[:1])
	assert.Error(t, err)
}

func TestPipeline_Run_InvalidPost(t *testing.T) {
	p := newTestPipeline()

	raw := []model.RawPost{{ID: 5, Title: "No author", Content: "x", Date: "2025-11-01"}}
	_, err := p.Run(context.Background(), raw)
	assert.Error(t, err)
}

func TestPipeline_AttachmentFilenameFallback(t *testing.T) {
	p := newTestPipeline()

	raw := testRawPosts()[2]
	raw.AttachmentText = ""

	posts, err := p.normalizePosts([]model.RawPost{raw})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Attachments: cards.pdf", posts[0].AttachmentSummaries)
}

func TestPipeline_WebsiteExtraction(t *testing.T) {
	p := newTestPipeline()

	raw := model.RawPost{
		ID:     6,
		Title:  "links",
		Author: "Ada",
		Date:   "2025-11-01",
		Content: `<paragraph>code at https://github.com/ada/tool, site at ` +
			`https://ada.dev/projects, profile at https://linkedin.com/in/ada</paragraph>`,
	}

	posts, err := p.normalizePosts([]model.RawPost{raw})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "github.com/ada/tool", posts[0].GitHubURL)
	assert.Equal(t, "linkedin.com/in/ada", posts[0].LinkedInURL)
	assert.Equal(t, "https://ada.dev/projects", posts[0].WebsiteURL)
}

func TestNameClusters(t *testing.T) {
	p := newTestPipeline()

	posts := []model.Post{
		{Topics: []string{"CNN Basics"}},
		{Topics: []string{"CNN Basics", "RNNs"}},
		{Topics: []string{"RNNs"}},
		{Topics: nil},
		{Topics: []string{"Transformers"}},
	}
	clusters := []int{0, 0, 0, 1, model.NoiseCluster}

	names := p.nameClusters(posts, clusters, model.ViewModeTopic)

	assert.Equal(t, "CNN Basics", names[0])
	assert.Equal(t, "Cluster 1", names[1])
	assert.Equal(t, model.NoiseClusterName, names[model.NoiseCluster])
}

func TestNameClusters_SkipsFallbackLabels(t *testing.T) {
	p := newTestPipeline()

	posts := []model.Post{
		{Tools: []string{FallbackTool}},
		{Tools: []string{FallbackTool, "quiz"}},
		{Tools: []string{FallbackTool}},
	}
	clusters := []int{0, 0, 0}

	names := p.nameClusters(posts, clusters, model.ViewModeTool)
	assert.Equal(t, "quiz", names[0])
}
