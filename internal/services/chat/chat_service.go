package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
	"github.com/ternarybob/docqa/internal/services/llm"
	"github.com/ternarybob/docqa/internal/services/prompt"
)

const (
	// Image-only questions
	defaultImageQuestion = "What is in this image?"
	imageRetrievalQuery  = "Analyze this image"
	imageTurnContent     = "Image query"

	// FailureReply is stored as the assistant turn when generation fails
	FailureReply = "Sorry, I encountered an error. Please try again."
)

// AnswerGenerator turns a rendered prompt into a parsed answer
type AnswerGenerator interface {
	Generate(ctx context.Context, spec prompt.Spec, image []byte, mimeType string) (*llm.Answer, error)
}

// Options controls retrieval depth and prompt history
type Options struct {
	TopK          int
	HistoryTurns  int
	MaxImageBytes int64
}

// OptionsFromConfig reads chat options from the application config
func OptionsFromConfig(config *common.Config) Options {
	return Options{
		TopK:          config.Pipeline.TopK,
		HistoryTurns:  config.Pipeline.HistoryTurns,
		MaxImageBytes: config.Limits.MaxImageBytes,
	}
}

// Service answers questions against the caller's documents and keeps
// the conversation history
type Service struct {
	chats      interfaces.ChatStorage
	embeddings interfaces.EmbeddingService
	index      interfaces.RetrievalIndex
	generator  AnswerGenerator
	opts       Options
	locks      *chatLocks
	validate   *validator.Validate
	logger     arbor.ILogger
	now        func() time.Time
}

// NewService creates a new chat service
func NewService(
	chats interfaces.ChatStorage,
	embeddings interfaces.EmbeddingService,
	index interfaces.RetrievalIndex,
	generator AnswerGenerator,
	opts Options,
	logger arbor.ILogger,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.HistoryTurns < 0 {
		opts.HistoryTurns = 0
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = common.DefaultMaxImageBytes
	}
	return &Service{
		chats:      chats,
		embeddings: embeddings,
		index:      index,
		generator:  generator,
		opts:       opts,
		locks:      newChatLocks(),
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// Ask answers a question (optionally with an image) and appends the
// exchange to the chat. A failed generation still records the question
// with a fixed apology reply before the error is returned.
func (s *Service) Ask(ctx context.Context, req *interfaces.AskRequest) (*interfaces.AskResponse, error) {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: ask request is required", common.ErrInvalidRequest)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
	}

	question := strings.TrimSpace(req.Question)
	hasImage := len(req.Image) > 0
	if question == "" && !hasImage {
		return nil, fmt.Errorf("%w: question or image is required", common.ErrInvalidRequest)
	}

	promptQuestion, retrievalQuery, turnContent := question, question, question
	if question == "" {
		promptQuestion = defaultImageQuestion
		retrievalQuery = imageRetrievalQuery
		turnContent = imageTurnContent
	}

	imageMimeType := ""
	if hasImage {
		if int64(len(req.Image)) > s.opts.MaxImageBytes {
			return nil, fmt.Errorf("%w: image is %d bytes, limit is %d", common.ErrInvalidRequest, len(req.Image), s.opts.MaxImageBytes)
		}
		imageMimeType, err = resolveImageMimeType(req)
		if err != nil {
			return nil, err
		}
	}

	lockKey := req.ChatID
	if lockKey == "" {
		lockKey = common.NewChatID()
	}
	unlock := s.locks.Lock(lockKey)
	defer unlock()

	chat, err := s.resolveChat(ctx, ownerID, req.ChatID, lockKey)
	if err != nil {
		return nil, err
	}

	results := s.retrieve(ctx, ownerID, retrievalQuery)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec := prompt.Build(promptQuestion, results, chat.RecentTurns(s.opts.HistoryTurns), hasImage)

	s.logger.Debug().
		Str("chat_id", chat.ID).
		Str("query_type", string(spec.QueryType)).
		Int("context_chunks", spec.ContextChunks).
		Bool("has_image", hasImage).
		Msg("Prompt assembled")

	userTurn := models.ConversationTurn{
		Role:          models.TurnRoleUser,
		Content:       turnContent,
		Timestamp:     s.now().UTC(),
		AttachmentRef: req.ImageName,
	}

	answer, genErr := s.generator.Generate(ctx, spec, req.Image, imageMimeType)
	if genErr != nil {
		s.logger.Error().
			Err(genErr).
			Str("chat_id", chat.ID).
			Str("owner_id", ownerID).
			Msg("Answer generation failed")

		failureTurn := models.ConversationTurn{
			Role:      models.TurnRoleAssistant,
			Content:   FailureReply,
			Timestamp: s.now().UTC(),
		}
		// Record the exchange even when the caller has gone away
		if _, err := s.chats.AppendTurns(context.WithoutCancel(ctx), chat.ID, ownerID, userTurn, failureTurn); err != nil {
			s.logger.Warn().Err(err).Str("chat_id", chat.ID).Msg("Failed to record failed exchange")
		}
		return nil, genErr
	}

	assistantTurn := models.ConversationTurn{
		Role:      models.TurnRoleAssistant,
		Content:   answer.Answer,
		Timestamp: s.now().UTC(),
	}
	if _, err := s.chats.AppendTurns(ctx, chat.ID, ownerID, userTurn, assistantTurn); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("chat_id", chat.ID).
		Str("owner_id", ownerID).
		Int("sources", len(results)).
		Int("follow_ups", len(answer.FollowUps)).
		Int("attempts", answer.Attempts).
		Msg("Question answered")

	return &interfaces.AskResponse{
		ChatID:    chat.ID,
		Answer:    answer.Answer,
		FollowUps: answer.FollowUps,
		Sources:   sourcesFrom(results),
	}, nil
}

// resolveChat loads the requested chat, or creates one when no ID was
// given or the ID is unknown
func (s *Service) resolveChat(ctx context.Context, ownerID, requestedID, newID string) (*models.Chat, error) {
	if requestedID != "" {
		chat, err := s.chats.GetChat(ctx, requestedID)
		switch {
		case err == nil:
			if chat.OwnerID != ownerID {
				s.logger.Warn().
					Str("chat_id", requestedID).
					Str("owner_id", ownerID).
					Msg("Rejected question on chat of another owner")
				return nil, fmt.Errorf("chat %s: %w", requestedID, common.ErrTenantViolation)
			}
			return chat, nil
		case errors.Is(err, common.ErrNotFound):
			newID = common.NewChatID()
			s.logger.Debug().
				Str("requested_chat_id", requestedID).
				Str("chat_id", newID).
				Msg("Unknown chat, starting a new one")
		default:
			return nil, err
		}
	}

	now := s.now().UTC()
	chat := &models.Chat{
		ID:        newID,
		OwnerID:   ownerID,
		Turns:     []models.ConversationTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// retrieve embeds the query and searches the owner's chunks. An embedding
// or search failure degrades to an answer without document context.
func (s *Service) retrieve(ctx context.Context, ownerID, query string) []models.RetrievalResult {
	vector, err := s.embeddings.EmbedOne(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Query embedding failed, answering without document context")
		return []models.RetrievalResult{}
	}

	results, err := s.index.Search(ctx, ownerID, vector, s.opts.TopK)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Retrieval failed, answering without document context")
		return []models.RetrievalResult{}
	}
	return results
}

// ListChats returns the caller's chats, most recently updated first
func (s *Service) ListChats(ctx context.Context) ([]*models.Chat, error) {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	chats, err := s.chats.ListChats(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

// GetChat returns one of the caller's chats
func (s *Service) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.OwnerID != ownerID {
		return nil, fmt.Errorf("chat %s: %w", chatID, common.ErrTenantViolation)
	}
	return chat, nil
}

// DeleteChat removes one of the caller's chats
func (s *Service) DeleteChat(ctx context.Context, chatID string) error {
	ownerID, err := common.OwnerFromContext(ctx)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(chatID)
	defer unlock()

	if err := s.chats.DeleteChat(ctx, ownerID, chatID); err != nil {
		return err
	}

	s.logger.Info().Str("chat_id", chatID).Str("owner_id", ownerID).Msg("Chat deleted")
	return nil
}

// Image types both providers accept inline
var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func resolveImageMimeType(req *interfaces.AskRequest) (string, error) {
	mimeType := strings.TrimSpace(req.ImageMimeType)
	if mimeType == "" {
		mimeType = mimetype.Detect(req.Image).String()
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !supportedImageTypes[strings.ToLower(mimeType)] {
		return "", fmt.Errorf("%w: unsupported image type %s (use jpeg, png or webp)", common.ErrInvalidRequest, mimeType)
	}
	return strings.ToLower(mimeType), nil
}

func sourcesFrom(results []models.RetrievalResult) []interfaces.SourceRef {
	sources := make([]interfaces.SourceRef, 0, len(results))
	for _, result := range results {
		sources = append(sources, interfaces.SourceRef{
			DocumentID:   result.DocumentID,
			DocumentName: result.DocumentName,
			Score:        result.Score,
			Page:         result.Page,
		})
	}
	return sources
}

var _ interfaces.ChatService = (*Service)(nil)
