package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"post-graph/backend/internal/graph"
	"post-graph/backend/internal/ingestion"
	"post-graph/backend/internal/model"
	"post-graph/backend/internal/scraper"
	"post-graph/backend/pkg/config"
	"post-graph/backend/pkg/logger"
)

func main() {
	skipScrape := flag.Bool("skip-scrape", false, "skip fetching new posts from the forum")
	persist := flag.Bool("persist", false, "load the result into Neo4j after processing")
	postsPath := flag.String("posts", "", "raw posts JSON file (overrides POSTS_PATH)")
	outputPath := flag.String("output", "", "result JSON file (overrides OUTPUT_PATH)")
	flag.Parse()

	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting ingestion job...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if *postsPath != "" {
		cfg.PostsPath = *postsPath
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}

	ctx := context.Background()

	rawPosts, err := collectPosts(ctx, cfg, *skipScrape)
	if err != nil {
		log.Fatal("Failed to collect posts", zap.Error(err))
	}
	if len(rawPosts) == 0 {
		log.Fatal("No posts to process", zap.String("posts_path", cfg.PostsPath))
	}
	log.Info("Collected posts", zap.Int("posts", len(rawPosts)))

	// Assemble the pipeline
	textEmbedder := ingestion.NewOpenAIEmbedder(cfg.EmbeddingURL, "", cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	embedder := ingestion.NewEmbedder(textEmbedder, cfg.FusionAlpha)
	categorizer := ingestion.NewCategorizer(ingestion.DefaultVocabulary())
	builder := ingestion.NewGraphBuilder(
		ingestion.NewPCAProjector(),
		ingestion.NewDBSCANClusterer(cfg.MinClusterSize),
		cfg.SimilarityThreshold,
		cfg.SimilarityTopK,
	)
	pipeline := ingestion.NewPipeline(categorizer, embedder, builder)

	result, err := pipeline.Run(ctx, rawPosts)
	if err != nil {
		log.Fatal("Pipeline failed", zap.Error(err))
	}

	if err := result.Save(cfg.OutputPath); err != nil {
		log.Fatal("Failed to save result", zap.Error(err))
	}
	log.Info("Result saved", zap.String("path", cfg.OutputPath))

	logSummary(log, result)

	if *persist {
		repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			log.Fatal("Failed to connect to Neo4j", zap.Error(err))
		}
		defer repo.Close()

		if err := repo.EnsureConstraints(ctx); err != nil {
			log.Fatal("Failed to ensure graph constraints", zap.Error(err))
		}
		if _, err := repo.LoadResult(ctx, result); err != nil {
			log.Fatal("Failed to persist result", zap.Error(err))
		}
	}

	log.Info("Ingestion job complete")
}

// collectPosts loads the raw posts file and, unless skipped or
// unconfigured, fetches new forum threads and merges them in
func collectPosts(ctx context.Context, cfg *config.Config, skipScrape bool) ([]model.RawPost, error) {
	log := logger.Get()

	if skipScrape || !cfg.ScrapeConfigured() {
		if !skipScrape {
			log.Warn("Ed API credentials not set, skipping scrape")
		}
		return scraper.LoadRawPosts(cfg.PostsPath)
	}

	client := scraper.NewClient(scraper.DefaultBaseURL, cfg.EdAPIToken, cfg.EdCourseID)
	fetched, err := client.FetchMatching(ctx, cfg.SearchString)
	if err != nil {
		return nil, err
	}

	processor := scraper.NewAttachmentProcessor()
	processor.ProcessPosts(ctx, fetched)

	merged, added, err := scraper.MergePostsFile(cfg.PostsPath, fetched)
	if err != nil {
		return nil, err
	}
	log.Info("Merged scraped posts",
		zap.Int("fetched", len(fetched)),
		zap.Int("new", added),
		zap.Int("total", len(merged)),
	)
	return merged, nil
}

// logSummary reports category distributions and the impressiveness mean
// for the processed collection
func logSummary(log *zap.Logger, result *model.Result) {
	toolCounts := make(map[string]int)
	llmCounts := make(map[string]int)
	var scoreSum float64

	for i := range result.Posts {
		post := &result.Posts[i]
		for _, tool := range post.Tools {
			toolCounts[tool]++
		}
		for _, llm := range post.LLMs {
			llmCounts[llm]++
		}
		scoreSum += post.ImpressivenessScore
	}

	meanScore := 0.0
	if len(result.Posts) > 0 {
		meanScore = scoreSum / float64(len(result.Posts))
	}

	log.Info("Collection summary",
		zap.Int("posts", len(result.Posts)),
		zap.Float64("mean_impressiveness", meanScore),
		zap.Any("tools", sortedCounts(toolCounts)),
		zap.Any("llms", sortedCounts(llmCounts)),
	)
}

// sortedCounts renders a count map as "label=count" pairs, most common
// first
func sortedCounts(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	pairs := make([]string, 0, len(labels))
	for _, label := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%d", label, counts[label]))
	}
	return pairs
}
