package badger

import (
	"context"
	"fmt"
	"sort"

	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger.
// A document and its chunks are one record, so saves and deletes are atomic
// and readers never observe a partially written document.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if doc.OwnerID == "" {
		return common.ErrMissingOwner
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Str("owner_id", doc.OwnerID).
		Int("chunks", len(doc.Chunks)).
		Msg("Document saved")

	return nil
}

func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns the owner's documents, newest upload first
func (s *DocumentStorage) ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error) {
	var docs []models.Document
	query := badgerhold.Where("OwnerID").Eq(ownerID).SortBy("UploadedAt").Reverse()
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

// DeleteDocument removes the document and its chunks in one transaction
func (s *DocumentStorage) DeleteDocument(ctx context.Context, ownerID, id string) error {
	store := s.db.Store()
	err := store.Badger().Update(func(txn *dgbadger.Txn) error {
		var doc models.Document
		if err := store.TxGet(txn, id, &doc); err != nil {
			if err == badgerhold.ErrNotFound {
				return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
			}
			return err
		}
		if doc.OwnerID != ownerID {
			return fmt.Errorf("document %s: %w", id, common.ErrTenantViolation)
		}
		return store.TxDelete(txn, id, &models.Document{})
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Debug().Str("doc_id", id).Str("owner_id", ownerID).Msg("Document deleted")
	return nil
}

// ListChunksForOwner flattens the owner's committed documents into
// retrieval candidates, ordered by upload time then chunk index
func (s *DocumentStorage) ListChunksForOwner(ctx context.Context, ownerID string) ([]models.CorpusEntry, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("OwnerID").Eq(ownerID)); err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})

	entries := make([]models.CorpusEntry, 0)
	for _, doc := range docs {
		if doc.OwnerID != ownerID {
			continue
		}
		for i, chunk := range doc.Chunks {
			entries = append(entries, models.CorpusEntry{
				Chunk:        chunk,
				ChunkIndex:   i,
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				OwnerID:      doc.OwnerID,
			})
		}
	}
	return entries, nil
}
