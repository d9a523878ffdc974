package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Document is one ingested PDF.
type Document struct {
	ID        string
	Filename  string
	PageCount int
	CreatedAt time.Time
}

// Chunk is a retrievable text fragment of a document page.
type Chunk struct {
	ID         string
	DocID      string
	PageNumber int
	Content    string
}
