package graph

import "post-graph/backend/internal/model"

// GraphNode is a post with its layout for one view mode, embeddings
// omitted to keep API payloads small
type GraphNode struct {
	EdPostID            int      `json:"ed_post_id"`
	EdPostNumber        int      `json:"ed_post_number,omitempty"`
	Title               string   `json:"title"`
	Content             string   `json:"content"`
	Author              string   `json:"author"`
	Date                string   `json:"date"`
	AttachmentURLs      []string `json:"attachment_urls"`
	GitHubURL           string   `json:"github_url,omitempty"`
	WebsiteURL          string   `json:"website_url,omitempty"`
	LinkedInURL         string   `json:"linkedin_url,omitempty"`
	Topics              []string `json:"topics"`
	Tools               []string `json:"tools"`
	LLMs                []string `json:"llms"`
	ImpressivenessScore float64  `json:"impressiveness_score"`
	X                   float64  `json:"x"`
	Y                   float64  `json:"y"`
	ClusterID           int      `json:"cluster_id"`
}

// GraphData is everything the frontend needs to draw one view
type GraphData struct {
	Nodes []GraphNode            `json:"nodes"`
	Edges []model.SimilarityEdge `json:"edges"`
}

// Stats summarizes what the store currently holds
type Stats struct {
	Posts        int `json:"posts"`
	Layouts      int `json:"layouts"`
	Similarities int `json:"similarities"`
}

// LoadSummary reports the outcome of a bulk result load
type LoadSummary struct {
	PostsInserted int
	PostsFailed   int
	EdgesInserted int
	EdgesFailed   int
}
