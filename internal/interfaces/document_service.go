package interfaces

import (
	"context"

	"github.com/ternarybob/docqa/internal/models"
)

// IngestRequest is an uploaded file to extract, chunk, embed and commit
type IngestRequest struct {
	Name     string   `json:"name"`
	FileName string   `json:"file_name" validate:"required"`
	Data     []byte   `json:"-" validate:"required"`
	Tags     []string `json:"tags,omitempty" validate:"dive,max=64"`
}

// DocumentService manages the caller's documents.
// The owner is read from the context (common.WithOwner).
type DocumentService interface {
	Ingest(ctx context.Context, req *IngestRequest) (*models.Document, error)
	List(ctx context.Context) ([]models.DocumentSummary, error)
	Get(ctx context.Context, documentID string) (*models.Document, error)
	Delete(ctx context.Context, documentID string) error
}
