package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
)

// LinearIndex scans every committed chunk of the owner on each search.
// The document store only exposes committed documents, so chunks of an
// in-flight ingestion are never scanned.
type LinearIndex struct {
	documents interfaces.DocumentStorage
	logger    arbor.ILogger
}

// NewLinearIndex creates a retrieval index backed by a full corpus scan
func NewLinearIndex(documents interfaces.DocumentStorage, logger arbor.ILogger) *LinearIndex {
	return &LinearIndex{
		documents: documents,
		logger:    logger,
	}
}

// Search loads the owner's corpus and ranks it against query
func (i *LinearIndex) Search(ctx context.Context, ownerID string, query []float32, topK int) ([]models.RetrievalResult, error) {
	if len(query) == 0 {
		return []models.RetrievalResult{}, nil
	}

	start := time.Now()
	corpus, err := i.documents.ListChunksForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	results := Retrieve(ownerID, query, corpus, topK)

	i.logger.Debug().
		Str("owner_id", ownerID).
		Int("candidates", len(corpus)).
		Int("results", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Retrieved chunks")

	return results, nil
}

var _ interfaces.RetrievalIndex = (*LinearIndex)(nil)
