package models

import (
	"time"
)

// Chunk is a bounded span of document text with its embedding.
// Chunks are immutable once created; re-ingestion replaces them wholesale.
type Chunk struct {
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	SourcePage *int      `json:"source_page,omitempty"` // 1-based page for paged formats (PDF)
}

// Document is an ingested file owned by exactly one owner.
// Chunks are stored inside the record so a document commits and deletes as one unit.
type Document struct {
	// Identity
	ID      string `json:"id"` // doc_{uuid}
	OwnerID string `json:"owner_id" badgerhold:"index"`

	// Upload metadata
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name"`
	FileType     string   `json:"file_type"` // Sniffed MIME type
	Tags         []string `json:"tags,omitempty"`
	Size         int64    `json:"size"`
	PageCount    int      `json:"page_count,omitempty"`

	Chunks []Chunk `json:"chunks"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentSummary is the listing projection of a Document (no chunk payload)
type DocumentSummary struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	OriginalName string    `json:"original_name" yaml:"original_name"`
	FileType     string    `json:"file_type" yaml:"file_type"`
	Tags         []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Size         int64     `json:"size" yaml:"size"`
	ChunksCount  int       `json:"chunks_count" yaml:"chunks_count"`
	UploadedAt   time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// Summary projects the document for listings
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:           d.ID,
		Name:         d.Name,
		OriginalName: d.OriginalName,
		FileType:     d.FileType,
		Tags:         d.Tags,
		Size:         d.Size,
		ChunksCount:  len(d.Chunks),
		UploadedAt:   d.UploadedAt,
	}
}
