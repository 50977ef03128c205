package domain

import (
	"context"
	"strings"
	"time"
)

// DefaultTopic is assigned to documents ingested without a topic.
const DefaultTopic = "general"

// questionMarker separates the assembled context from the user question.
const questionMarker = "\n\nQuestion: "

// Document is a single knowledge snippet tagged with a topic.
type Document struct {
	ID      string
	Content string
	Topic   string
}

// QueryResult describes how a query was answered.
type QueryResult struct {
	Query        string
	Response     string
	UsedCache    bool
	TopicsUsed   []string
	ResponseTime time.Duration
}

// Generator produces a completion for a prompt.
// Implementations may call out to a remote model; failures are returned as-is.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt joins context and question the way every generator expects.
func BuildPrompt(context, question string) string {
	return context + questionMarker + question
}

// SplitPrompt is the inverse of BuildPrompt. A prompt without the marker is
// treated as a bare question.
func SplitPrompt(prompt string) (context, question string) {
	i := strings.LastIndex(prompt, questionMarker)
	if i < 0 {
		return "", prompt
	}
	return prompt[:i], prompt[i+len(questionMarker):]
}
