package badger

import (
	"context"
	"fmt"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ChatStorage implements the ChatStorage interface for Badger
type ChatStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChatStorage creates a new ChatStorage instance
func NewChatStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChatStorage {
	return &ChatStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChatStorage) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := s.db.Store().Get(id, &chat); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("chat %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

func (s *ChatStorage) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat.ID == "" {
		return fmt.Errorf("chat ID is required")
	}
	if chat.OwnerID == "" {
		return common.ErrMissingOwner
	}

	now := time.Now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = chat.CreatedAt
	}

	if err := s.db.Store().Insert(chat.ID, chat); err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// ListChats returns the owner's chats, most recently updated first
func (s *ChatStorage) ListChats(ctx context.Context, ownerID string) ([]*models.Chat, error) {
	var chats []models.Chat
	query := badgerhold.Where("OwnerID").Eq(ownerID).SortBy("UpdatedAt").Reverse()
	if err := s.db.Store().Find(&chats, query); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	result := make([]*models.Chat, len(chats))
	for i := range chats {
		result[i] = &chats[i]
	}
	return result, nil
}

// AppendTurns appends the user turn and its assistant turn in one
// transaction, so a chat never holds an unanswered user turn
func (s *ChatStorage) AppendTurns(ctx context.Context, chatID, ownerID string, user, assistant models.ConversationTurn) (*models.Chat, error) {
	if user.Role != models.TurnRoleUser || assistant.Role != models.TurnRoleAssistant {
		return nil, fmt.Errorf("%w: turns must be a user turn followed by an assistant turn", common.ErrInvalidRequest)
	}

	store := s.db.Store()
	var updated models.Chat

	err := store.Badger().Update(func(txn *dgbadger.Txn) error {
		var chat models.Chat
		if err := store.TxGet(txn, chatID, &chat); err != nil {
			if err == badgerhold.ErrNotFound {
				return fmt.Errorf("chat %s: %w", chatID, common.ErrNotFound)
			}
			return err
		}
		if chat.OwnerID != ownerID {
			return fmt.Errorf("chat %s: %w", chatID, common.ErrTenantViolation)
		}

		chat.Turns = append(chat.Turns, user, assistant)
		chat.UpdatedAt = assistant.Timestamp
		if chat.UpdatedAt.IsZero() {
			chat.UpdatedAt = time.Now()
		}

		if err := store.TxUpsert(txn, chatID, &chat); err != nil {
			return err
		}
		updated = chat
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append turns: %w", err)
	}

	return &updated, nil
}

func (s *ChatStorage) DeleteChat(ctx context.Context, ownerID, id string) error {
	store := s.db.Store()
	err := store.Badger().Update(func(txn *dgbadger.Txn) error {
		var chat models.Chat
		if err := store.TxGet(txn, id, &chat); err != nil {
			if err == badgerhold.ErrNotFound {
				return fmt.Errorf("chat %s: %w", id, common.ErrNotFound)
			}
			return err
		}
		if chat.OwnerID != ownerID {
			return fmt.Errorf("chat %s: %w", id, common.ErrTenantViolation)
		}
		return store.TxDelete(txn, id, &models.Chat{})
	})
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}
