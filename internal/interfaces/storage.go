package interfaces

import (
	"context"

	"github.com/ternarybob/docqa/internal/models"
)

// DocumentStorage persists documents together with their chunks.
// SaveDocument commits the document and all chunks in one write.
type DocumentStorage interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error)
	// DeleteDocument removes the document and its chunks. Returns
	// common.ErrTenantViolation when the document belongs to another owner.
	DeleteDocument(ctx context.Context, ownerID, id string) error
	// ListChunksForOwner returns every committed chunk of the owner's documents
	ListChunksForOwner(ctx context.Context, ownerID string) ([]models.CorpusEntry, error)
}

// ChatStorage persists chats
type ChatStorage interface {
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	CreateChat(ctx context.Context, chat *models.Chat) error
	ListChats(ctx context.Context, ownerID string) ([]*models.Chat, error)
	// AppendTurns appends a user turn and its assistant turn in one transaction
	AppendTurns(ctx context.Context, chatID, ownerID string, user, assistant models.ConversationTurn) (*models.Chat, error)
	DeleteChat(ctx context.Context, ownerID, id string) error
}

// StorageManager owns the storage handles and their lifecycle
type StorageManager interface {
	DocumentStorage() DocumentStorage
	ChatStorage() ChatStorage
	Close() error
}
