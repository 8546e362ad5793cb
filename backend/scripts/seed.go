package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"post-graph/backend/internal/graph"
	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/config"
	"post-graph/backend/pkg/logger"
)

// Seeds the graph with a handful of sample posts so the API and frontend
// can be exercised without running the full ingestion pipeline.
//
// Usage: go run backend/scripts/seed.go [-reset]
func main() {
	reset := flag.Bool("reset", false, "delete existing posts before seeding")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.EnsureConstraints(ctx); err != nil {
		log.Fatal("Failed to create constraints", zap.Error(err))
	}

	if *reset {
		log.Info("Deleting existing posts...")
		if err := repo.DeleteAllPosts(ctx); err != nil {
			log.Fatal("Failed to delete posts", zap.Error(err))
		}
	}

	result := sampleResult()
	summary, err := repo.LoadResult(ctx, result)
	if err != nil {
		log.Fatal("Failed to load sample data", zap.Error(err))
	}

	log.Info("Seeding complete",
		zap.Int("posts", summary.PostsInserted),
		zap.Int("edges", summary.EdgesInserted),
	)
}

// sampleResult builds a small processed collection with plausible layouts
// and one similarity edge per view
func sampleResult() *model.Result {
	posts := []model.Post{
		{
			EdPostID: 1001, EdPostNumber: 3,
			Title:   "Special Participation E: Transformer Attention Quiz",
			Content: "An interactive quiz that drills self-attention and positional encoding.",
			Author:  "Ada", Date: "2025-11-02T10:00:00Z",
			GitHubURL:    "github.com/ada/attention-quiz",
			NumReactions: 6, NumReplies: 2,
			Topics: []string{"Transformers", "Attention Mechanisms"},
			Tools:  []string{"quiz", "interactive"},
			LLMs:   []string{"Claude"},
			ImpressivenessScore: 17.1,
			ContentEmbedding:    []float32{0.8, 0.6},
			TopicViewEmbedding:  []float32{0.85, 0.53},
			ToolViewEmbedding:   []float32{0.75, 0.66},
			LLMViewEmbedding:    []float32{0.8, 0.6},
			TopicLayout:         model.Layout{X: 1.2, Y: 0.4, ClusterID: 0},
			ToolLayout:          model.Layout{X: -0.5, Y: 1.1, ClusterID: 0},
			LLMLayout:           model.Layout{X: 0.3, Y: -0.9, ClusterID: model.NoiseCluster},
		},
		{
			EdPostID: 1002, EdPostNumber: 5,
			Title:   "Special Participation E: Transformer Flashcards",
			Content: "Flashcards covering multi-head attention, built with ChatGPT.",
			Author:  "Grace", Date: "2025-11-03T09:30:00Z",
			NumReactions: 4, NumReplies: 1,
			Topics: []string{"Transformers"},
			Tools:  []string{"flashcard"},
			LLMs:   []string{"GPT"},
			ImpressivenessScore: 9.1,
			ContentEmbedding:    []float32{0.78, 0.63},
			TopicViewEmbedding:  []float32{0.83, 0.56},
			ToolViewEmbedding:   []float32{0.6, 0.8},
			LLMViewEmbedding:    []float32{0.7, 0.71},
			TopicLayout:         model.Layout{X: 1.0, Y: 0.6, ClusterID: 0},
			ToolLayout:          model.Layout{X: 1.4, Y: -0.7, ClusterID: model.NoiseCluster},
			LLMLayout:           model.Layout{X: -0.8, Y: 0.2, ClusterID: model.NoiseCluster},
		},
		{
			EdPostID: 1003, EdPostNumber: 8,
			Title:   "Special Participation E: SGD Playground",
			Content: "A notebook visualizing gradient descent trajectories on loss surfaces.",
			Author:  "Alan", Date: "2025-11-04T14:00:00Z",
			WebsiteURL:   "https://alan.dev/sgd",
			NumReactions: 2, NumReplies: 3,
			Topics: []string{"SGD & Optimization Basics"},
			Tools:  []string{"notebook", "interactive"},
			LLMs:   []string{"Gemini"},
			ImpressivenessScore: 10.1,
			ContentEmbedding:    []float32{-0.6, 0.8},
			TopicViewEmbedding:  []float32{-0.66, 0.75},
			ToolViewEmbedding:   []float32{-0.5, 0.87},
			LLMViewEmbedding:    []float32{-0.6, 0.8},
			TopicLayout:         model.Layout{X: -1.3, Y: -0.5, ClusterID: model.NoiseCluster},
			ToolLayout:          model.Layout{X: -0.4, Y: 1.0, ClusterID: 0},
			LLMLayout:           model.Layout{X: 0.9, Y: 0.8, ClusterID: model.NoiseCluster},
		},
	}

	return &model.Result{
		Posts: posts,
		LayoutData: model.LayoutData{
			TopicSimilarities: []model.SimilarityEdge{{Source: 0, Target: 1, Similarity: 0.97}},
			ToolSimilarities:  []model.SimilarityEdge{{Source: 0, Target: 2, Similarity: 0.82}},
			LLMSimilarities:   []model.SimilarityEdge{{Source: 0, Target: 1, Similarity: 0.78}},
		},
		ClusterNames: model.ClusterNames{
			Topic: map[int]string{0: "Transformers", model.NoiseCluster: model.NoiseClusterName},
			Tool:  map[int]string{0: "interactive", model.NoiseCluster: model.NoiseClusterName},
			LLM:   map[int]string{model.NoiseCluster: model.NoiseClusterName},
		},
	}
}
