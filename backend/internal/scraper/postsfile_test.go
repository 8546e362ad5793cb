package scraper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-graph/backend/internal/model"
)

func TestLoadRawPosts_MissingFile(t *testing.T) {
	posts, err := LoadRawPosts(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, posts)
}

func TestMergePostsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")

	first := []model.RawPost{
		{ID: 1, Title: "one", Author: "Ada", Date: "2025-11-01"},
		{ID: 2, Title: "two", Author: "Bob", Date: "2025-11-02"},
	}
	merged, added, err := MergePostsFile(path, first)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Len(t, merged, 2)

	// A rerun with one overlapping and one new thread only adds the new one
	second := []model.RawPost{
		{ID: 2, Title: "two again", Author: "Bob", Date: "2025-11-02"},
		{ID: 3, Title: "three", Author: "Eve", Date: "2025-11-03"},
	}
	merged, added, err = MergePostsFile(path, second)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	require.Len(t, merged, 3)

	// The original record for thread 2 is kept, not overwritten
	assert.Equal(t, "two", merged[1].Title)
	assert.Equal(t, "three", merged[2].Title)

	// Reload from disk and confirm persistence
	loaded, err := LoadRawPosts(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestMergePostsFile_NoNewPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")

	initial := []model.RawPost{{ID: 1, Title: "one", Author: "Ada", Date: "2025-11-01"}}
	_, _, err := MergePostsFile(path, initial)
	require.NoError(t, err)

	merged, added, err := MergePostsFile(path, initial)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, merged, 1)
}
