package scraper

import (
	"encoding/json"
	"fmt"
	"os"

	"post-graph/backend/internal/model"
)

// LoadRawPosts reads the raw posts JSON file. A missing file is not an
// error; it yields an empty collection.
func LoadRawPosts(path string) ([]model.RawPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read posts file %s: %w", path, err)
	}

	var posts []model.RawPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse posts file %s: %w", path, err)
	}
	return posts, nil
}

// MergePostsFile appends freshly scraped posts whose thread ids are not yet
// in the file, writes the result back, and returns the merged collection
// with the number of new posts. Posts are additive: reruns never remove
// previously scraped threads.
func MergePostsFile(path string, fetched []model.RawPost) ([]model.RawPost, int, error) {
	existing, err := LoadRawPosts(path)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[int]bool, len(existing))
	for _, p := range existing {
		seen[p.ID] = true
	}

	added := 0
	for _, p := range fetched {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		existing = append(existing, p)
		added++
	}

	if added > 0 {
		data, err := json.MarshalIndent(existing, "", "  ")
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal posts: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, 0, fmt.Errorf("failed to write posts file %s: %w", path, err)
		}
	}

	return existing, added, nil
}
