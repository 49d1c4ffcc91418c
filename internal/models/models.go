package models

import (
	"time"
)

// EventKind classifies a progress stream event. A stream carries any number
// of progress events followed by exactly one complete or error event.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// ProgressEvent is one entry in the ordered event stream emitted during an
// ingestion run. The JSON field names match the newline-delimited wire format
// the frontend consumes.
type ProgressEvent struct {
	Kind    EventKind `json:"status"`
	Percent int       `json:"percent"`
	Message string    `json:"message,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// Terminal reports whether this event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Kind == EventComplete || e.Kind == EventError
}

// PdfUpload records one uploaded document.
type PdfUpload struct {
	ID         string    `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"file_name"`
	SHA256     string    `db:"sha256_hash" json:"sha256"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	PageCount  int       `db:"page_count" json:"page_count"`
	StorageURL string    `db:"storage_url" json:"storage_url"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Chunk is one fixed-size window of a document's text. StartOffset is the
// character (rune) offset of the window inside the full text.
type Chunk struct {
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
}

// RankedChunk pairs a chunk with its similarity score against a query.
// Scores are cosine similarities on non-negative TF-IDF vectors, so they
// always fall in [0, 1].
type RankedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
