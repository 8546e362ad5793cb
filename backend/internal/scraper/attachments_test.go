package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-graph/backend/internal/model"
)

func TestExtractHTMLText(t *testing.T) {
	html := `<html><head><style>body { color: red }</style></head>
	<body><script>alert("hi")</script><h1>My   Project</h1><p>It teaches  backprop.</p></body></html>`

	text, err := ExtractHTMLText([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, "My Project It teaches backprop.", text)
}

func TestExtractHTMLText_Truncates(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("word ", 2000) + "</p></body></html>"

	text, err := ExtractHTMLText([]byte(html))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), maxAttachmentText)
}

func TestExtractText_SkipsFailedDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html><body>readable text</body></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p := NewAttachmentProcessor()
	text := p.ExtractText(context.Background(), []string{
		server.URL + "/missing.pdf",
		server.URL + "/ok.html",
	})
	assert.Equal(t, "readable text", text)
}

func TestExtractText_IgnoresBinaryFormats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer server.Close()

	p := NewAttachmentProcessor()
	text := p.ExtractText(context.Background(), []string{server.URL + "/image.png"})
	assert.Equal(t, "", text)
}

func TestProcessPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>attachment content</body></html>"))
	}))
	defer server.Close()

	posts := []model.RawPost{
		{ID: 1, Author: "Ada", Date: "2025-11-01"},
		{
			ID: 2, Author: "Bob", Date: "2025-11-01",
			AttachmentsDownloaded: []model.RawAttachment{
				{URL: server.URL + "/page.html", OriginalFilename: "page.html"},
			},
		},
	}

	p := NewAttachmentProcessor()
	p.ProcessPosts(context.Background(), posts)

	assert.Equal(t, "", posts[0].AttachmentText)
	assert.Equal(t, "attachment content", posts[1].AttachmentText)
}
