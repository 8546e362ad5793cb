package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Embedding service (OpenAI-compatible endpoint)
	EmbeddingURL        string
	EmbeddingModel      string
	EmbeddingDimensions int

	// Ed forum scraper
	EdAPIToken   string
	EdCourseID   string
	SearchString string
	PostsPath    string // raw posts JSON file
	OutputPath   string // processed result JSON file

	// Pipeline tuning
	FusionAlpha         float64 // category influence on view embeddings
	SimilarityThreshold float64
	SimilarityTopK      int
	MinClusterSize      int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		EmbeddingURL:        getEnv("EMBEDDING_URL", "http://localhost:4000"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 384),
		EdAPIToken:          getEnv("ED_API_KEY", ""),
		EdCourseID:          getEnv("ED_COURSE_ID", ""),
		SearchString:        getEnv("ED_SEARCH_STRING", "Special Participation E"),
		PostsPath:           getEnv("POSTS_PATH", "ed_posts.json"),
		OutputPath:          getEnv("OUTPUT_PATH", "processed_posts.json"),
		FusionAlpha:         getEnvFloat("FUSION_ALPHA", 0.4),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.6),
		SimilarityTopK:      getEnvInt("SIMILARITY_TOP_K", 5),
		MinClusterSize:      getEnvInt("MIN_CLUSTER_SIZE", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.EmbeddingURL == "" {
		return fmt.Errorf("EMBEDDING_URL is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("EMBEDDING_MODEL is required")
	}
	if c.FusionAlpha < 0 || c.FusionAlpha > 1 {
		return fmt.Errorf("FUSION_ALPHA must be in [0,1], got %f", c.FusionAlpha)
	}
	if c.SimilarityTopK < 1 {
		return fmt.Errorf("SIMILARITY_TOP_K must be positive, got %d", c.SimilarityTopK)
	}
	// Ed credentials are optional: without them the scrape step is skipped
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ScrapeConfigured reports whether the Ed API credentials are present
func (c *Config) ScrapeConfigured() bool {
	return c.EdAPIToken != "" && c.EdCourseID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
