package graph

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/errors"
)

// These tests require a running Neo4j instance at bolt://localhost:7687
func createTestRepository(t *testing.T) *Repository {
	t.Helper()

	ctx := context.Background()
	repo, err := Connect(ctx, "bolt://localhost:7687", "neo4j", "password")
	if err != nil {
		t.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	if err := repo.EnsureConstraints(ctx); err != nil {
		t.Fatalf("Failed to ensure constraints: %v", err)
	}
	return repo
}

func cleanupPosts(t *testing.T, repo *Repository, ids ...int) {
	t.Helper()

	ctx := context.Background()
	session := repo.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, "MATCH (p:Post) WHERE p.ed_post_id IN $ids DETACH DELETE p",
		map[string]interface{}{"ids": ids})
}

func testPost(id int) model.Post {
	return model.Post{
		EdPostID:           id,
		EdPostNumber:       id * 10,
		Title:              "Transformer Quiz",
		Content:            "a quiz about attention",
		Author:             "Ada",
		Date:               "2025-11-02T10:00:00Z",
		AttachmentURLs:     []string{"https://files.example.com/quiz.pdf"},
		NumReactions:       4,
		NumReplies:         1,
		Topics:             []string{"Transformers"},
		Tools:              []string{"quiz"},
		LLMs:               []string{"Claude"},
		ContentEmbedding:   []float32{0.6, 0.8},
		TopicViewEmbedding: []float32{0.8, 0.6},
		ToolViewEmbedding:  []float32{1, 0},
		LLMViewEmbedding:   []float32{0, 1},
		TopicLayout:        model.Layout{X: 1.5, Y: -2.0, ClusterID: 0},
		ToolLayout:         model.Layout{X: 0.5, Y: 0.5, ClusterID: model.NoiseCluster},
		LLMLayout:          model.Layout{X: -1, Y: 3, ClusterID: 1},
	}
}

func TestRepository_UpsertAndGetPost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo := createTestRepository(t)
	defer repo.Close()
	defer cleanupPosts(t, repo, 900001)

	post := testPost(900001)
	if err := repo.UpsertPost(ctx, &post); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	got, err := repo.GetPostByID(ctx, 900001)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Title != post.Title {
		t.Errorf("Expected title %q, got %q", post.Title, got.Title)
	}
	if got.TopicLayout != post.TopicLayout {
		t.Errorf("Expected topic layout %v, got %v", post.TopicLayout, got.TopicLayout)
	}
	if len(got.ContentEmbedding) != len(post.ContentEmbedding) {
		t.Errorf("Expected %d embedding dims, got %d", len(post.ContentEmbedding), len(got.ContentEmbedding))
	}

	// Upsert is idempotent on the post id
	post.Title = "Transformer Quiz v2"
	if err := repo.UpsertPost(ctx, &post); err != nil {
		t.Fatalf("Second UpsertPost failed: %v", err)
	}
	got, err = repo.GetPostByID(ctx, 900001)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Title != "Transformer Quiz v2" {
		t.Errorf("Expected updated title, got %q", got.Title)
	}
}

func TestRepository_GetPostByID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo := createTestRepository(t)
	defer repo.Close()

	_, err := repo.GetPostByID(ctx, -12345)
	if err == nil {
		t.Fatal("Expected error for non-existent post")
	}
	if _, ok := err.(*errors.ErrPostNotFound); !ok {
		t.Errorf("Expected ErrPostNotFound, got %T", err)
	}
}

func TestRepository_SimilaritiesAndGraphData(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo := createTestRepository(t)
	defer repo.Close()
	defer cleanupPosts(t, repo, 900010, 900011, 900012)

	for _, id := range []int{900010, 900011, 900012} {
		post := testPost(id)
		if err := repo.UpsertPost(ctx, &post); err != nil {
			t.Fatalf("UpsertPost failed: %v", err)
		}
	}

	edges := []model.SimilarityEdge{
		{Source: 900010, Target: 900011, Similarity: 0.92},
		{Source: 900011, Target: 900012, Similarity: 0.75},
	}
	if err := repo.ReplaceSimilarities(ctx, model.ViewModeTopic, edges); err != nil {
		t.Fatalf("ReplaceSimilarities failed: %v", err)
	}

	data, err := repo.GetGraphData(ctx, model.ViewModeTopic)
	if err != nil {
		t.Fatalf("GetGraphData failed: %v", err)
	}
	if len(data.Edges) != 2 {
		t.Errorf("Expected 2 edges, got %d", len(data.Edges))
	}
	if len(data.Nodes) < 3 {
		t.Errorf("Expected at least 3 nodes, got %d", len(data.Nodes))
	}

	// Replacing again must not accumulate edges
	if err := repo.ReplaceSimilarities(ctx, model.ViewModeTopic, edges[:1]); err != nil {
		t.Fatalf("Second ReplaceSimilarities failed: %v", err)
	}
	data, err = repo.GetGraphData(ctx, model.ViewModeTopic)
	if err != nil {
		t.Fatalf("GetGraphData failed: %v", err)
	}
	if len(data.Edges) != 1 {
		t.Errorf("Expected 1 edge after replacement, got %d", len(data.Edges))
	}
}

func TestRepository_LoadResult(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo := createTestRepository(t)
	defer repo.Close()
	defer cleanupPosts(t, repo, 900020, 900021)

	result := &model.Result{
		Posts: []model.Post{testPost(900020), testPost(900021)},
		LayoutData: model.LayoutData{
			// index-based, translated to post ids during the load
			TopicSimilarities: []model.SimilarityEdge{{Source: 0, Target: 1, Similarity: 0.88}},
		},
	}

	summary, err := repo.LoadResult(ctx, result)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if summary.PostsInserted != 2 {
		t.Errorf("Expected 2 posts inserted, got %d", summary.PostsInserted)
	}
	if summary.PostsFailed != 0 {
		t.Errorf("Expected no post failures, got %d", summary.PostsFailed)
	}

	data, err := repo.GetGraphData(ctx, model.ViewModeTopic)
	if err != nil {
		t.Fatalf("GetGraphData failed: %v", err)
	}
	found := false
	for _, e := range data.Edges {
		if e.Source == 900020 && e.Target == 900021 {
			found = true
			if e.Similarity != 0.88 {
				t.Errorf("Expected similarity 0.88, got %f", e.Similarity)
			}
		}
	}
	if !found {
		t.Error("Expected translated edge between posts 900020 and 900021")
	}
}

func TestRepository_SearchPosts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo := createTestRepository(t)
	defer repo.Close()
	defer cleanupPosts(t, repo, 900030)

	post := testPost(900030)
	post.Title = "A very distinctive xyzzy title"
	if err := repo.UpsertPost(ctx, &post); err != nil {
		t.Fatalf("UpsertPost failed: %v", err)
	}

	found, err := repo.SearchPosts(ctx, "XYZZY", 10)
	if err != nil {
		t.Fatalf("SearchPosts failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(found))
	}
	if found[0].EdPostID != 900030 {
		t.Errorf("Expected post 900030, got %d", found[0].EdPostID)
	}
}

func TestTranslateEdges(t *testing.T) {
	posts := []model.Post{
		{EdPostID: 500},
		{EdPostID: 100},
	}
	edges := []model.SimilarityEdge{
		{Source: 0, Target: 1, Similarity: 0.7},
		{Source: 0, Target: 99, Similarity: 0.9}, // out of range, dropped
	}

	translated := translateEdges(posts, edges)
	if len(translated) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(translated))
	}
	// Smaller post id becomes the source
	if translated[0].Source != 100 || translated[0].Target != 500 {
		t.Errorf("Expected canonical edge 100->500, got %d->%d", translated[0].Source, translated[0].Target)
	}
}
