package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"

	"cag/internal/domain"
)

var (
	// ErrInvalidJSON is returned when the input is not well-formed JSON.
	ErrInvalidJSON = errors.New("invalid document JSON")
	// ErrNotArray is returned when the top-level JSON value is not an array.
	ErrNotArray = errors.New("document JSON must be an array of records")
)

// ParseDocuments decodes a JSON array of {id, topic, content} records.
// Missing fields default rather than fail: topic becomes "general", content
// becomes empty and id becomes the record's position.
func ParseDocuments(data []byte) ([]domain.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}
	var docs []domain.Document
	root.ForEach(func(_, rec gjson.Result) bool {
		doc := domain.Document{
			ID:      strconv.Itoa(len(docs)),
			Topic:   domain.DefaultTopic,
			Content: "",
		}
		if id := rec.Get("id"); present(id) {
			doc.ID = id.String()
		}
		if topic := rec.Get("topic"); present(topic) {
			doc.Topic = topic.String()
		}
		if content := rec.Get("content"); present(content) {
			doc.Content = content.String()
		}
		docs = append(docs, doc)
		return true
	})
	return docs, nil
}

// ReadDocuments reads and parses a document array from r.
func ReadDocuments(r io.Reader) ([]domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseDocuments(data)
}

// LoadFile parses the document file at path.
func LoadFile(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs, err := ParseDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path":      path,
		"size":      humanize.Bytes(uint64(len(data))),
		"documents": len(docs),
	}).Debug("read document file")
	return docs, nil
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
