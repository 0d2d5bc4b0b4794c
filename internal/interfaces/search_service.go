package interfaces

import (
	"context"

	"github.com/ternarybob/docqa/internal/models"
)

// RetrievalIndex ranks an owner's committed chunks against a query vector.
// A linear scan and an index-backed implementation share this contract.
type RetrievalIndex interface {
	Search(ctx context.Context, ownerID string, query []float32, topK int) ([]models.RetrievalResult, error)
}
