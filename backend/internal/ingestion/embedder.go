package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/logger"
)

// DefaultFusionAlpha is the default category influence on view embeddings
const DefaultFusionAlpha = 0.4

// TextEmbedder generates unit-length vector embeddings for text.
//
// Implementations can use different providers while maintaining a consistent
// interface; a deterministic stub is enough for unit tests.
type TextEmbedder interface {
	// Embed creates one embedding per input text. All returned vectors have
	// Dimensions() entries and unit L2 norm.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced embeddings
	Dimensions() int

	// Model returns the model identifier used by this embedder
	Model() string
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewOpenAIEmbedder creates an embedder against the given base URL
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimensions int) *OpenAIEmbedder {
	// Local embedding servers usually ignore the key but the client wants one
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
		logger:     logger.Get(),
	}
}

// Dimensions returns the embedding dimensionality
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model identifier
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed requests embeddings for all texts in one batch call.
// Vectors are re-normalized to unit length before being returned.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	}

	// Retry logic with exponential backoff
	var resp openai.EmbeddingResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			e.logger.Warn("Retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
		}

		resp, err = e.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}

		e.logger.Error("Embedding request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", e.model),
			zap.Int("batch_size", len(texts)),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", maxRetries, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response index out of range: %d", item.Index)
		}
		if e.dimensions > 0 && len(item.Embedding) != e.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: want %d, got %d", e.dimensions, len(item.Embedding))
		}
		vectors[item.Index] = l2Normalize(item.Embedding)
	}

	return vectors, nil
}

// PostEmbeddings holds the four embeddings generated per post
type PostEmbeddings struct {
	Content   []float32
	TopicView []float32
	ToolView  []float32
	LLMView   []float32
}

// Embedder produces content and view-specific fused embeddings for posts
type Embedder struct {
	embedder TextEmbedder
	alpha    float64
	logger   *zap.Logger
}

// NewEmbedder creates a post embedder. alpha is the category influence
// weight for view-specific embeddings; higher means the category pulls the
// post further toward its cluster.
func NewEmbedder(embedder TextEmbedder, alpha float64) *Embedder {
	return &Embedder{
		embedder: embedder,
		alpha:    alpha,
		logger:   logger.Get(),
	}
}

// EmbedContent generates a unit-length embedding for a single text
func (e *Embedder) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Fuse blends a content embedding with an embedding of the category labels.
// With no labels the content embedding is returned unchanged; otherwise the
// result is (1-alpha)·content + alpha·categories, re-normalized to unit
// length. This is what makes the three view modes produce visually distinct
// layouts for the same post set.
func (e *Embedder) Fuse(ctx context.Context, content string, categories []string) ([]float32, error) {
	contentVec, err := e.EmbedContent(ctx, content)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return contentVec, nil
	}

	categoryVec, err := e.EmbedContent(ctx, strings.Join(categories, " "))
	if err != nil {
		return nil, err
	}

	return fuseVectors(contentVec, categoryVec, e.alpha), nil
}

// fuseVectors linearly combines two unit vectors and re-normalizes
func fuseVectors(content, category []float32, alpha float64) []float32 {
	fused := make([]float32, len(content))
	for i := range content {
		fused[i] = float32((1-alpha)*float64(content[i]) + alpha*float64(category[i]))
	}
	return l2Normalize(fused)
}

// EmbedPost generates all four embeddings for a post: the content embedding
// plus topic/tool/llm view embeddings fused with the post's labels. The
// content input is the post text concatenated with its attachment summary.
// All texts go to the embedding service in a single batch.
func (e *Embedder) EmbedPost(ctx context.Context, post *model.Post) (*PostEmbeddings, error) {
	fullContent := post.Content + " " + post.AttachmentSummaries

	// Batch: content first, then one label text per view that has labels
	texts := []string{fullContent}
	labelIndex := map[model.ViewMode]int{}
	for _, view := range model.ViewModes() {
		labels := post.LabelsForView(view)
		if len(labels) > 0 {
			labelIndex[view] = len(texts)
			texts = append(texts, strings.Join(labels, " "))
		}
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed post %d: %w", post.EdPostID, err)
	}

	contentVec := vectors[0]
	result := &PostEmbeddings{Content: contentVec}

	for _, view := range model.ViewModes() {
		viewVec := contentVec
		if idx, ok := labelIndex[view]; ok {
			viewVec = fuseVectors(contentVec, vectors[idx], e.alpha)
		}
		switch view {
		case model.ViewModeTopic:
			result.TopicView = viewVec
		case model.ViewModeTool:
			result.ToolView = viewVec
		case model.ViewModeLLM:
			result.LLMView = viewVec
		}
	}

	return result, nil
}
