package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/logger"
)

// DefaultBaseURL is the Ed forum API endpoint
const DefaultBaseURL = "https://us.edstem.org/api"

const threadPageSize = 30

// fileURLPattern pulls attachment references out of the thread markup
var fileURLPattern = regexp.MustCompile(`<file[^>]*url="([^"]+)"[^>]*/>`)

var filenameFromURLPattern = regexp.MustCompile(`[^/]+$`)

// Client fetches participation threads from the Ed forum API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	courseID   string
	logger     *zap.Logger
}

// NewClient creates a forum client authenticated with the given API token
func NewClient(baseURL, token, courseID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
		courseID:   courseID,
		logger:     logger.Get(),
	}
}

// threadSummary is the thread shape returned by the course listing endpoint
type threadSummary struct {
	ID           int    `json:"id"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Document     string `json:"document"`
	Content      string `json:"content"`
	CreatedAt    string `json:"created_at"`
	VoteCount    int    `json:"vote_count"`
	ReplyCount   int    `json:"reply_count"`
	IsAnonymous  bool   `json:"is_anonymous"`
	User         *struct {
		Name string `json:"name"`
	} `json:"user"`
}

type threadListResponse struct {
	Threads []threadSummary `json:"threads"`
}

// FetchMatching pages through the course threads and returns the ones whose
// title contains the search string, mapped to raw post records
func (c *Client) FetchMatching(ctx context.Context, search string) ([]model.RawPost, error) {
	var posts []model.RawPost

	for offset := 0; ; offset += threadPageSize {
		threads, err := c.listThreads(ctx, offset)
		if err != nil {
			return nil, err
		}
		if len(threads) == 0 {
			break
		}

		for i := range threads {
			if search != "" && !strings.Contains(threads[i].Title, search) {
				continue
			}
			posts = append(posts, c.toRawPost(&threads[i]))
		}
	}

	c.logger.Info("Fetched matching forum threads",
		zap.String("search", search),
		zap.Int("matched", len(posts)),
	)
	return posts, nil
}

// listThreads fetches one page of course threads
func (c *Client) listThreads(ctx context.Context, offset int) ([]threadSummary, error) {
	url := fmt.Sprintf("%s/courses/%s/threads?limit=%d&offset=%d", c.baseURL, c.courseID, threadPageSize, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build thread list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thread list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thread list request returned status %d", resp.StatusCode)
	}

	var parsed threadListResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode thread list: %w", err)
	}
	return parsed.Threads, nil
}

// toRawPost maps a forum thread to the pipeline's raw post shape
func (c *Client) toRawPost(t *threadSummary) model.RawPost {
	author := "Anonymous"
	if !t.IsAnonymous && t.User != nil && t.User.Name != "" {
		author = t.User.Name
	}

	post := model.RawPost{
		ID:           t.ID,
		Number:       t.Number,
		Title:        t.Title,
		Content:      t.Content,
		Author:       author,
		Date:         t.CreatedAt,
		NumReactions: t.VoteCount,
		NumReplies:   t.ReplyCount,
	}

	for _, m := range fileURLPattern.FindAllStringSubmatch(t.Content, -1) {
		url := m[1]
		name := filenameFromURLPattern.FindString(url)
		post.AttachmentsDownloaded = append(post.AttachmentsDownloaded, model.RawAttachment{
			URL:              url,
			OriginalFilename: name,
		})
	}

	return post
}
