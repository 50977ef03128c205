package extractive

import (
	"context"
	"strings"

	"cag/internal/domain"
	"cag/internal/summarizer"
)

const noContext = "I don't have any information about that."

// Generator answers offline by extracting the context sentences most related
// to the question.
type Generator struct {
	summarizer   *summarizer.FrequencySummarizer
	maxSentences int
}

// New returns an extractive generator keeping up to maxSentences sentences.
func New(maxSentences int) *Generator {
	return &Generator{summarizer: summarizer.NewFrequencySummarizer(), maxSentences: maxSentences}
}

// Name returns the identifier of this generator.
func (g *Generator) Name() string { return "extractive" }

// Generate never fails; it honours ctx cancellation only.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	knowledge, question := domain.SplitPrompt(prompt)
	if strings.TrimSpace(knowledge) == "" {
		return noContext, nil
	}
	return g.summarizer.Summarize(knowledge, question, g.maxSentences), nil
}
