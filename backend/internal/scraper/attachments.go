package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/logger"
)

const (
	// maxPDFPages bounds how much of each PDF is read
	maxPDFPages = 3
	// maxAttachmentText caps the extracted text per attachment
	maxAttachmentText = 5000
	// maxAttachmentBytes caps the downloaded payload
	maxAttachmentBytes = 20 << 20
	// downloadConcurrency bounds simultaneous attachment downloads
	downloadConcurrency = 4
)

// AttachmentProcessor downloads post attachments and extracts their text so
// the pipeline can fold it into the content embedding. Extraction is best
// effort: failures are logged and yield empty text, never an error.
type AttachmentProcessor struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAttachmentProcessor creates an attachment processor
func NewAttachmentProcessor() *AttachmentProcessor {
	return &AttachmentProcessor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Get(),
	}
}

// ProcessPosts fills AttachmentText for every raw post that has
// attachments, downloading concurrently across posts
func (p *AttachmentProcessor) ProcessPosts(ctx context.Context, posts []model.RawPost) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)

	var mu sync.Mutex
	for i := range posts {
		if len(posts[i].AttachmentsDownloaded) == 0 {
			continue
		}
		i := i
		g.Go(func() error {
			urls := make([]string, 0, len(posts[i].AttachmentsDownloaded))
			for _, att := range posts[i].AttachmentsDownloaded {
				urls = append(urls, att.URL)
			}
			text := p.ExtractText(ctx, urls)
			mu.Lock()
			posts[i].AttachmentText = text
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures degrade to empty summaries
	_ = g.Wait()
}

// ExtractText downloads each attachment and concatenates whatever readable
// text can be pulled out of it
func (p *AttachmentProcessor) ExtractText(ctx context.Context, urls []string) string {
	var parts []string
	for _, url := range urls {
		text, err := p.extractOne(ctx, url)
		if err != nil {
			p.logger.Warn("Skipping attachment",
				zap.String("url", url),
				zap.Error(err),
			)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// extractOne fetches a single attachment and dispatches on its type
func (p *AttachmentProcessor) extractOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.HasSuffix(url, ".pdf") || strings.Contains(contentType, "application/pdf"):
		return extractPDFText(data)
	case strings.Contains(contentType, "text/html"):
		return ExtractHTMLText(data)
	}
	// Other formats (images, archives) carry no extractable text
	return "", nil
}

// extractPDFText extracts plain text from the first few pages of a PDF
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		if sb.Len() >= maxAttachmentText {
			break
		}
	}

	return truncate(sb.String(), maxAttachmentText), nil
}

// ExtractHTMLText pulls the readable text out of an HTML document,
// dropping scripts, styles, and other non-content elements
func ExtractHTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	return truncate(text, maxAttachmentText), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
