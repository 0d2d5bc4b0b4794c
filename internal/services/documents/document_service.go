package documents

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
	"github.com/ternarybob/docqa/internal/services/chunker"
)

// Service implements DocumentService interface
type Service struct {
	storage    interfaces.DocumentStorage
	extractor  interfaces.TextExtractor
	chunker    *chunker.Chunker
	embeddings interfaces.EmbeddingService
	maxBytes   int64
	validate   *validator.Validate
	logger     arbor.ILogger
	now        func() time.Time
}

// NewService creates a new document service
func NewService(
	storage interfaces.DocumentStorage,
	extractor interfaces.TextExtractor,
	textChunker *chunker.Chunker,
	embeddings interfaces.EmbeddingService,
	maxUploadBytes int64,
	logger arbor.ILogger,
) *Service {
	if maxUploadBytes <= 0 {
		maxUploadBytes = common.DefaultMaxUploadBytes
	}
	return &Service{
		storage:    storage,
		extractor:  extractor,
		chunker:    textChunker,
		embeddings: embeddings,
		maxBytes:   maxUploadBytes,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// Ingest extracts, chunks and embeds an upload, then commits the document
// with all its chunks in one write. Any embedding failure aborts the
// ingestion and nothing is stored.
func (s *Service) Ingest(ctx context.Context, req *interfaces.IngestRequest) (*models.Document, error) {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: ingest request is required", common.ErrInvalidRequest)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
	}
	if int64(len(req.Data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: upload is %d bytes, limit is %d", common.ErrInvalidRequest, len(req.Data), s.maxBytes)
	}

	start := s.now()
	fileName := filepath.Base(req.FileName)

	extracted, err := s.extractor.Extract(ctx, fileName, req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", fileName, err)
	}

	chunks := s.chunkPages(extracted)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, common.ErrNoContent)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := s.embeddings.EmbedMany(ctx, texts)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("file_name", fileName).
			Int("chunks", len(chunks)).
			Msg("Embedding failed, ingestion aborted")
		return nil, fmt.Errorf("ingestion of %s aborted: %w", fileName, err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fileName
	}

	doc := &models.Document{
		ID:           common.NewDocumentID(),
		OwnerID:      ownerID,
		Name:         name,
		OriginalName: fileName,
		FileType:     extracted.MimeType,
		Tags:         normalizeTags(req.Tags),
		Size:         int64(len(req.Data)),
		Chunks:       chunks,
		UploadedAt:   s.now().UTC(),
	}
	if extracted.Paged {
		doc.PageCount = len(extracted.Pages)
	}

	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("doc_id", doc.ID).
		Str("owner_id", ownerID).
		Str("name", doc.Name).
		Str("file_type", doc.FileType).
		Int("chunks", len(doc.Chunks)).
		Dur("duration", s.now().Sub(start)).
		Msg("Document ingested")

	return doc, nil
}

// chunkPages chunks each extracted page separately so every chunk of a
// paged format remembers its source page
func (s *Service) chunkPages(extracted *interfaces.ExtractedText) []models.Chunk {
	chunks := make([]models.Chunk, 0)
	for _, page := range extracted.Pages {
		for _, text := range s.chunker.Chunk(page.Text) {
			chunk := models.Chunk{Text: text}
			if extracted.Paged && page.Number > 0 {
				number := page.Number
				chunk.SourcePage = &number
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// List returns summaries of the caller's documents, newest upload first
func (s *Service) List(ctx context.Context) ([]models.DocumentSummary, error) {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := s.storage.ListDocuments(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, doc.Summary())
	}
	return summaries, nil
}

// Get returns one of the caller's documents
func (s *Service) Get(ctx context.Context, documentID string) (*models.Document, error) {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.storage.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		s.logger.Warn().
			Str("doc_id", documentID).
			Str("owner_id", ownerID).
			Msg("Rejected access to document of another owner")
		return nil, fmt.Errorf("document %s: %w", documentID, common.ErrTenantViolation)
	}
	return doc, nil
}

// Delete removes one of the caller's documents together with its chunks
func (s *Service) Delete(ctx context.Context, documentID string) error {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteDocument(ctx, ownerID, documentID); err != nil {
		return err
	}

	s.logger.Info().
		Str("doc_id", documentID).
		Str("owner_id", ownerID).
		Msg("Document deleted")
	return nil
}

// normalizeTags trims, drops empties and de-duplicates while keeping order
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

var _ interfaces.DocumentService = (*Service)(nil)
