package interfaces

import (
	"context"

	"github.com/ternarybob/docqa/internal/models"
)

// AskRequest is a question against the caller's documents.
// At least one of Question or Image is required.
type AskRequest struct {
	ChatID        string `json:"chat_id,omitempty"`
	Question      string `json:"question" validate:"required_without=Image,max=8000"`
	Image         []byte `json:"-" validate:"required_without=Question"`
	ImageMimeType string `json:"image_mime_type,omitempty"`
	ImageName     string `json:"image_name,omitempty"`
}

// SourceRef cites a retrieved chunk in an answer
type SourceRef struct {
	DocumentID   string  `json:"document_id" yaml:"document_id"`
	DocumentName string  `json:"document_name" yaml:"document_name"`
	Score        float64 `json:"score" yaml:"score"`
	Page         *int    `json:"page,omitempty" yaml:"page,omitempty"`
}

// AskResponse is the structured answer returned to the caller
type AskResponse struct {
	ChatID    string      `json:"chat_id" yaml:"chat_id"`
	Answer    string      `json:"answer" yaml:"answer"`
	FollowUps []string    `json:"follow_up_questions" yaml:"follow_up_questions"`
	Sources   []SourceRef `json:"sources" yaml:"sources"`
}

// ChatService answers questions and manages the caller's chats.
// The owner is read from the context (common.WithOwner).
type ChatService interface {
	Ask(ctx context.Context, req *AskRequest) (*AskResponse, error)
	ListChats(ctx context.Context) ([]*models.Chat, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
}
