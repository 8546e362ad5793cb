package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"post-graph/backend/internal/model"
)

func newTestCategorizer() *Categorizer {
	return NewCategorizer(DefaultVocabulary())
}

func TestExtractTopics_RankedByMatchCount(t *testing.T) {
	c := newTestCategorizer()

	text := "I built a tool about gradient descent. It animates gradient descent " +
		"steps and explains why gradient descent converges. It also briefly " +
		"mentions transformer models."
	topics := c.ExtractTopics(text)

	assert.NotEmpty(t, topics)
	assert.Equal(t, "SGD & Optimization Basics", topics[0])
	assert.Contains(t, topics, "Transformers")
}

func TestExtractTopics_AtMostThree(t *testing.T) {
	c := newTestCategorizer()

	text := "gradient descent backpropagation convolution lstm transformer attention dropout"
	topics := c.ExtractTopics(text)

	assert.Len(t, topics, 3)
}

func TestExtractTopics_ShortKeywordsNeedWordBoundaries(t *testing.T) {
	c := newTestCategorizer()

	// "l1" inside another token must not count as a regularization match
	assert.Empty(t, c.ExtractTopics("the model is called xl1000 and does nothing else"))

	// but as a standalone word it does
	topics := c.ExtractTopics("we applied l1 penalties to the weights")
	assert.Equal(t, []string{"Regularization"}, topics)
}

func TestExtractTopics_NoMatches(t *testing.T) {
	c := newTestCategorizer()
	assert.Empty(t, c.ExtractTopics("a post about cooking pasta"))
	assert.Empty(t, c.ExtractTopics(""))
}

func TestExtractTools(t *testing.T) {
	c := newTestCategorizer()

	tools := c.ExtractTools("An interactive visualization with flashcards built in Colab")
	assert.Contains(t, tools, "interactive")
	assert.Contains(t, tools, "flashcard")
	assert.Contains(t, tools, "notebook")
	assert.NotContains(t, tools, FallbackTool)
}

func TestExtractTools_Fallback(t *testing.T) {
	c := newTestCategorizer()
	assert.Equal(t, []string{FallbackTool}, c.ExtractTools("something entirely uncategorizable"))
}

func TestExtractLLMs(t *testing.T) {
	c := newTestCategorizer()

	llms := c.ExtractLLMs("Built with Claude and ChatGPT")
	assert.Equal(t, []string{"Claude", "GPT"}, llms)
}

func TestExtractLLMs_Fallback(t *testing.T) {
	c := newTestCategorizer()
	assert.Equal(t, []string{FallbackLLM}, c.ExtractLLMs("no model mentioned here"))
}

func TestCalculateImpressiveness(t *testing.T) {
	c := newTestCategorizer()

	base := model.Post{Content: "short"}
	assert.InDelta(t, 0.005, c.CalculateImpressiveness(&base), 0.0001)

	engaged := model.Post{
		Content:      "short",
		NumReactions: 3,
		NumReplies:   2,
	}
	assert.InDelta(t, 8.005, c.CalculateImpressiveness(&engaged), 0.0001)

	withExtras := model.Post{
		Content:        "short",
		NumReactions:   3,
		NumReplies:     2,
		AttachmentURLs: []string{"https://files.example.com/a.pdf"},
		GitHubURL:      "github.com/someone/project",
	}
	assert.InDelta(t, 16.005, c.CalculateImpressiveness(&withExtras), 0.0001)
}

func TestCalculateImpressiveness_LengthBonusCapped(t *testing.T) {
	c := newTestCategorizer()

	long := model.Post{Content: string(make([]byte, 10000))}
	assert.InDelta(t, 5.0, c.CalculateImpressiveness(&long), 0.0001)
}
