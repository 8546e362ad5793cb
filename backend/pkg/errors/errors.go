package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypePipeline represents ingestion pipeline errors
	ErrorTypePipeline ErrorType = "pipeline"
	// ErrorTypeEmbedding represents embedding service errors
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeScrape represents forum scraper errors
	ErrorTypeScrape ErrorType = "scrape"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Pipeline Errors

// ErrMissingPostField is returned when a raw post lacks a required field
type ErrMissingPostField struct {
	*BaseError
	PostID int
	Field  string
}

func NewMissingPostField(postID int, field string) *ErrMissingPostField {
	return &ErrMissingPostField{
		BaseError: NewBaseError(ErrorTypePipeline, fmt.Sprintf("post %d missing required field: %s", postID, field), nil),
		PostID:    postID,
		Field:     field,
	}
}

// ErrEmptyCollection is returned when the pipeline is run with no posts
var ErrEmptyCollection = NewBaseError(ErrorTypePipeline, "no posts to process", nil)

// ErrUnknownViewMode is returned for a view mode outside {topic, tool, llm}
type ErrUnknownViewMode struct {
	*BaseError
	ViewMode string
}

func NewUnknownViewMode(viewMode string) *ErrUnknownViewMode {
	return &ErrUnknownViewMode{
		BaseError: NewBaseError(ErrorTypePipeline, fmt.Sprintf("unknown view mode: %s", viewMode), nil),
		ViewMode:  viewMode,
	}
}

// Embedding Errors

// ErrEmbeddingFailed is returned when the embedding service request fails
type ErrEmbeddingFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewEmbeddingFailed(model string, attempts int, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// ErrDimensionMismatch is returned when an embedding has an unexpected dimensionality
type ErrDimensionMismatch struct {
	*BaseError
	Want int
	Got  int
}

func NewDimensionMismatch(want, got int) *ErrDimensionMismatch {
	return &ErrDimensionMismatch{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding dimension mismatch: want %d, got %d", want, got), nil),
		Want:      want,
		Got:       got,
	}
}

// Scrape Errors

// ErrScrapeRequestFailed is returned when a forum API request fails
type ErrScrapeRequestFailed struct {
	*BaseError
	URL    string
	Status int
}

func NewScrapeRequestFailed(url string, status int, err error) *ErrScrapeRequestFailed {
	return &ErrScrapeRequestFailed{
		BaseError: NewBaseError(ErrorTypeScrape, fmt.Sprintf("forum request failed (status %d): %s", status, url), err),
		URL:       url,
		Status:    status,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// ErrPostNotFound is returned when a post is not found in the graph
type ErrPostNotFound struct {
	*BaseError
	PostID int
}

func NewPostNotFound(postID int) *ErrPostNotFound {
	return &ErrPostNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("post not found: %d", postID), nil),
		PostID:    postID,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	// Check wrapped errors
	if baseErr, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(baseErr.Unwrap(), errType)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Embedding service hiccups and graph connection errors are retryable,
	// malformed input is not
	if IsErrorType(err, ErrorTypeEmbedding) {
		return true
	}
	if IsErrorType(err, ErrorTypeGraph) {
		return true
	}
	return false
}
