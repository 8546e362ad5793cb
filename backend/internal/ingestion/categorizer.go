package ingestion

import (
	"regexp"
	"sort"
	"strings"

	"post-graph/backend/internal/model"
)

const maxTopicsPerPost = 3

// shortKeywordLen is the keyword length at or below which matches require
// word boundaries, so "l1" cannot match inside an unrelated token
const shortKeywordLen = 3

// Categorizer extracts topic, tool, and LLM labels from normalized post text
// and computes a quality score per post
type Categorizer struct {
	vocab Vocabulary

	// word-boundary matchers precompiled for short keywords
	shortKeyword map[string]*regexp.Regexp
}

// NewCategorizer creates a categorizer over the given keyword tables
func NewCategorizer(vocab Vocabulary) *Categorizer {
	c := &Categorizer{
		vocab:        vocab,
		shortKeyword: make(map[string]*regexp.Regexp),
	}
	for _, cat := range vocab.Topics {
		for _, kw := range cat.Keywords {
			if len(kw) <= shortKeywordLen {
				if _, ok := c.shortKeyword[kw]; !ok {
					c.shortKeyword[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
				}
			}
		}
	}
	return c
}

// prepare lowercases the text, strips any markup remnants, and collapses
// whitespace so keyword matching sees one clean token stream
func prepare(text string) string {
	text = anyTagPattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")
	return strings.ToLower(text)
}

// ExtractTopics returns up to three course topic labels ordered by
// descending keyword match count. Keywords of three characters or fewer are
// matched as whole words; longer keywords as substrings. Labels with zero
// matches are excluded; ties keep the vocabulary order.
func (c *Categorizer) ExtractTopics(text string) []string {
	prepared := prepare(text)
	if prepared == "" {
		return nil
	}

	type topicMatch struct {
		label string
		count int
	}

	matches := make([]topicMatch, 0, len(c.vocab.Topics))
	for _, cat := range c.vocab.Topics {
		count := 0
		for _, kw := range cat.Keywords {
			if len(kw) <= shortKeywordLen {
				count += len(c.shortKeyword[kw].FindAllStringIndex(prepared, -1))
			} else {
				count += strings.Count(prepared, kw)
			}
		}
		if count > 0 {
			matches = append(matches, topicMatch{label: cat.Label, count: count})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].count > matches[j].count
	})

	if len(matches) > maxTopicsPerPost {
		matches = matches[:maxTopicsPerPost]
	}

	topics := make([]string, len(matches))
	for i, m := range matches {
		topics[i] = m.label
	}
	return topics
}

// ExtractTools returns the tool type labels whose keywords appear in the
// text. The result is never empty: with no match it is ["other"].
func (c *Categorizer) ExtractTools(text string) []string {
	lowered := strings.ToLower(text)

	var detected []string
	for _, cat := range c.vocab.Tools {
		if anyKeywordIn(lowered, cat.Keywords) {
			detected = append(detected, cat.Label)
		}
	}

	if len(detected) == 0 {
		return []string{FallbackTool}
	}
	return detected
}

// ExtractLLMs returns the LLM vendor labels whose keywords appear in the
// text. The reserved "Other" label never matches by keyword; it is the
// fallback when nothing else does, so the result is never empty.
func (c *Categorizer) ExtractLLMs(text string) []string {
	lowered := strings.ToLower(text)

	var detected []string
	for _, cat := range c.vocab.LLMs {
		if cat.Label == FallbackLLM {
			continue
		}
		if anyKeywordIn(lowered, cat.Keywords) {
			detected = append(detected, cat.Label)
		}
	}

	if len(detected) == 0 {
		return []string{FallbackLLM}
	}
	return detected
}

// anyKeywordIn reports whether any keyword appears as a substring
func anyKeywordIn(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// CalculateImpressiveness scores a post's quality from engagement,
// completeness, and external evidence of work:
//
//	reactions ×2 + replies ×1
//	+ min(content length / 1000, 5)
//	+ 5 if the post has attachments
//	+ 3 if a GitHub or personal website link was found
//
// The score has no upper bound.
func (c *Categorizer) CalculateImpressiveness(post *model.Post) float64 {
	score := float64(post.NumReactions)*2 + float64(post.NumReplies)

	lengthBonus := float64(len(post.Content)) / 1000
	if lengthBonus > 5 {
		lengthBonus = 5
	}
	score += lengthBonus

	if len(post.AttachmentURLs) > 0 {
		score += 5
	}
	if post.GitHubURL != "" || post.WebsiteURL != "" {
		score += 3
	}

	return score
}
