package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"post-graph/backend/internal/graph"
	"post-graph/backend/internal/model"
	"post-graph/backend/pkg/config"
	"post-graph/backend/pkg/errors"
	"post-graph/backend/pkg/logger"
)

const defaultSearchLimit = 20

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to Neo4j
	ctx := context.Background()
	repo, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.EnsureConstraints(ctx); err != nil {
		log.Fatal("Failed to ensure graph constraints", zap.Error(err))
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// refreshing guards against overlapping refresh runs
	var refreshing atomic.Bool

	// API routes
	api := router.Group("/api")
	{
		// List all posts
		api.GET("/posts", func(c *gin.Context) {
			posts, err := repo.GetAllPosts(c.Request.Context())
			if err != nil {
				log.Error("Failed to list posts", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
				return
			}
			if posts == nil {
				posts = []model.Post{}
			}
			c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
		})

		// Get one post by forum post id
		api.GET("/posts/:id", func(c *gin.Context) {
			id, err := strconv.Atoi(c.Param("id"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Post id must be an integer"})
				return
			}

			post, err := repo.GetPostByID(c.Request.Context(), id)
			if err != nil {
				if _, ok := err.(*errors.ErrPostNotFound); ok {
					c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
					return
				}
				log.Error("Failed to get post", zap.Int("id", id), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get post"})
				return
			}

			c.JSON(http.StatusOK, post)
		})

		// Get graph data for one view mode
		api.GET("/graph-data/:view_mode", func(c *gin.Context) {
			view, err := model.ParseViewMode(c.Param("view_mode"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "View mode must be one of: topic, tool, llm"})
				return
			}

			data, err := repo.GetGraphData(c.Request.Context(), view)
			if err != nil {
				log.Error("Failed to get graph data", zap.String("view_mode", string(view)), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get graph data"})
				return
			}

			c.JSON(http.StatusOK, data)
		})

		// Search posts by title, content, or author
		api.GET("/search", func(c *gin.Context) {
			query := c.Query("q")
			if query == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
				return
			}

			limit := defaultSearchLimit
			if raw := c.Query("limit"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil || parsed < 1 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be a positive integer"})
					return
				}
				limit = parsed
			}

			posts, err := repo.SearchPosts(c.Request.Context(), query, limit)
			if err != nil {
				log.Error("Failed to search posts", zap.String("q", query), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search posts"})
				return
			}
			if posts == nil {
				posts = []model.Post{}
			}

			c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
		})

		// Store statistics
		api.GET("/stats", func(c *gin.Context) {
			stats, err := repo.GetStats(c.Request.Context())
			if err != nil {
				log.Error("Failed to get stats", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
				return
			}
			c.JSON(http.StatusOK, stats)
		})

		// Reload the latest pipeline result into the graph
		api.POST("/refresh", func(c *gin.Context) {
			if !refreshing.CompareAndSwap(false, true) {
				c.JSON(http.StatusConflict, gin.H{"error": "Refresh already in progress"})
				return
			}

			result, err := model.LoadResult(cfg.OutputPath)
			if err != nil {
				refreshing.Store(false)
				log.Error("Failed to load result file", zap.String("path", cfg.OutputPath), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load result file"})
				return
			}

			go func() {
				defer refreshing.Store(false)

				summary, err := repo.LoadResult(context.Background(), result)
				if err != nil {
					log.Error("Refresh failed", zap.Error(err))
					return
				}
				log.Info("Refresh complete",
					zap.Int("posts_inserted", summary.PostsInserted),
					zap.Int("posts_failed", summary.PostsFailed),
					zap.Int("edges_inserted", summary.EdgesInserted),
				)
			}()

			c.JSON(http.StatusAccepted, gin.H{
				"status": "refresh started",
				"posts":  len(result.Posts),
			})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
