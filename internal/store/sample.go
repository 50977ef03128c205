package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/apex/log"

	"cag/internal/domain"
)

// SampleDocuments returns the built-in demo corpus: two documents for each of
// five topics.
func SampleDocuments() []domain.Document {
	return []domain.Document{
		{ID: "1", Topic: "python", Content: "Python is a high-level, interpreted programming language known for its readability and versatility. It supports multiple programming paradigms including procedural, object-oriented, and functional programming."},
		{ID: "2", Topic: "python", Content: "Python has a comprehensive standard library and a large ecosystem of third-party packages. Popular libraries include NumPy for numerical computing, Pandas for data analysis, and TensorFlow for machine learning."},
		{ID: "3", Topic: "javascript", Content: "JavaScript is a scripting language primarily used for creating interactive web pages. It's an essential part of web applications and runs in the browser environment."},
		{ID: "4", Topic: "javascript", Content: "Modern JavaScript includes features like arrow functions, destructuring, and async/await. Popular frameworks include React, Vue, and Angular."},
		{ID: "5", Topic: "machine learning", Content: "Machine learning is a subset of artificial intelligence that enables systems to learn from data and improve from experience without being explicitly programmed."},
		{ID: "6", Topic: "machine learning", Content: "Common machine learning algorithms include linear regression, decision trees, neural networks, and clustering algorithms. The field is divided into supervised, unsupervised, and reinforcement learning."},
		{ID: "7", Topic: "databases", Content: "Databases are organized collections of data stored and accessed electronically. SQL databases like MySQL and PostgreSQL use structured query language for managing data."},
		{ID: "8", Topic: "databases", Content: "NoSQL databases like MongoDB and Redis provide flexible schemas and are often used for large-scale, distributed data storage needs."},
		{ID: "9", Topic: "cache augmented generation", Content: "Cache Augmented Generation (CAG) is a technique that improves on Retrieval Augmented Generation (RAG) by preloading relevant knowledge into a language model's context before the user asks a question."},
		{ID: "10", Topic: "cache augmented generation", Content: "CAG addresses latency issues in RAG by eliminating real-time document retrieval for common queries, resulting in faster response times and better user experience."},
	}
}

type record struct {
	ID      string `json:"id"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// EnsureSampleFile writes the demo corpus to path unless a file already
// exists there. It reports whether a file was written.
func EnsureSampleFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	docs := SampleDocuments()
	recs := make([]record, len(docs))
	for i, d := range docs {
		recs[i] = record{ID: d.ID, Topic: d.Topic, Content: d.Content}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	log.WithField("path", path).Info("wrote sample documents")
	return true, nil
}
