package model

import "fmt"

// ViewMode selects which category labels bias the fused embedding and
// therefore the layout and clustering for that lens
type ViewMode string

const (
	ViewModeTopic ViewMode = "topic"
	ViewModeTool  ViewMode = "tool"
	ViewModeLLM   ViewMode = "llm"
)

// ViewModes returns all view modes in their canonical order
func ViewModes() []ViewMode {
	return []ViewMode{ViewModeTopic, ViewModeTool, ViewModeLLM}
}

// ParseViewMode validates a view mode string
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewModeTopic, ViewModeTool, ViewModeLLM:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("unknown view mode: %q", s)
}

// RawAttachment is an attachment reference as delivered by the forum API
type RawAttachment struct {
	URL              string `json:"url"`
	OriginalFilename string `json:"original_filename"`
}

// RawPost is one forum thread as delivered by the scraper, before the
// ingestion pipeline has touched it
type RawPost struct {
	ID                    int             `json:"id"`
	Number                int             `json:"number,omitempty"` // sequential post number shown in the forum UI
	Title                 string          `json:"title"`
	Content               string          `json:"content"` // markup string
	Author                string          `json:"author"`
	Date                  string          `json:"date"`
	AttachmentsDownloaded []RawAttachment `json:"attachments_downloaded,omitempty"`
	AttachmentText        string          `json:"attachment_text,omitempty"` // extracted PDF/HTML text, if the scraper produced any
	NumReactions          int             `json:"num_reactions,omitempty"`
	NumReplies            int             `json:"num_replies,omitempty"`
}

// Validate checks that the raw post carries the fields the pipeline requires
func (p *RawPost) Validate() error {
	if p.ID == 0 {
		return ErrInvalidRawPost{Field: "id", Reason: "cannot be zero"}
	}
	if p.Author == "" {
		return ErrInvalidRawPost{PostID: p.ID, Field: "author", Reason: "cannot be empty"}
	}
	if p.Date == "" {
		return ErrInvalidRawPost{PostID: p.ID, Field: "date", Reason: "cannot be empty"}
	}
	return nil
}

// Layout is a post's 2-D position and cluster assignment for one view mode.
// ClusterID -1 is reserved for noise points the clusterer could not place.
type Layout struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClusterID int     `json:"cluster_id"`
}

// Post is a fully processed submission: normalized text, category labels,
// impressiveness score, embeddings, and per-view layouts
type Post struct {
	EdPostID     int    `json:"ed_post_id"`
	EdPostNumber int    `json:"ed_post_number,omitempty"`
	Title        string `json:"title"`
	Content      string `json:"content"` // normalized plain text
	Author       string `json:"author"`
	Date         string `json:"date"`

	AttachmentURLs      []string `json:"attachment_urls"`
	AttachmentSummaries string   `json:"attachment_summaries"`
	GitHubURL           string   `json:"github_url,omitempty"`
	WebsiteURL          string   `json:"website_url,omitempty"`
	LinkedInURL         string   `json:"linkedin_url,omitempty"`
	NumReactions        int      `json:"num_reactions"`
	NumReplies          int      `json:"num_replies"`

	Topics              []string `json:"topics"`
	Tools               []string `json:"tools"`
	LLMs                []string `json:"llms"`
	ImpressivenessScore float64  `json:"impressiveness_score"`

	ContentEmbedding   []float32 `json:"content_embedding"`
	TopicViewEmbedding []float32 `json:"topic_view_embedding"`
	ToolViewEmbedding  []float32 `json:"tool_view_embedding"`
	LLMViewEmbedding   []float32 `json:"llm_view_embedding"`

	TopicLayout Layout `json:"topic_layout"`
	ToolLayout  Layout `json:"tool_layout"`
	LLMLayout   Layout `json:"llm_layout"`
}

// LabelsForView returns the category labels driving the given view mode
func (p *Post) LabelsForView(view ViewMode) []string {
	switch view {
	case ViewModeTopic:
		return p.Topics
	case ViewModeTool:
		return p.Tools
	case ViewModeLLM:
		return p.LLMs
	}
	return nil
}

// EmbeddingForView returns the fused embedding for the given view mode
func (p *Post) EmbeddingForView(view ViewMode) []float32 {
	switch view {
	case ViewModeTopic:
		return p.TopicViewEmbedding
	case ViewModeTool:
		return p.ToolViewEmbedding
	case ViewModeLLM:
		return p.LLMViewEmbedding
	}
	return nil
}

// LayoutForView returns the layout for the given view mode
func (p *Post) LayoutForView(view ViewMode) Layout {
	switch view {
	case ViewModeTopic:
		return p.TopicLayout
	case ViewModeTool:
		return p.ToolLayout
	case ViewModeLLM:
		return p.LLMLayout
	}
	return Layout{ClusterID: NoiseCluster}
}

// SetLayout stores the layout for the given view mode
func (p *Post) SetLayout(view ViewMode, layout Layout) {
	switch view {
	case ViewModeTopic:
		p.TopicLayout = layout
	case ViewModeTool:
		p.ToolLayout = layout
	case ViewModeLLM:
		p.LLMLayout = layout
	}
}

// Errors

type ErrInvalidRawPost struct {
	PostID int
	Field  string
	Reason string
}

func (e ErrInvalidRawPost) Error() string {
	if e.PostID != 0 {
		return fmt.Sprintf("invalid post %d: %s - %s", e.PostID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid post: %s - %s", e.Field, e.Reason)
}
