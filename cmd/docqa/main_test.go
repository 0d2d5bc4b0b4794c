package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
	"gopkg.in/yaml.v3"
)

type mockDocumentService struct {
	ingestFunc func(ctx context.Context, req *interfaces.IngestRequest) (*models.Document, error)
	docs       []models.DocumentSummary
	deleted    []string
	owners     []string
}

func (m *mockDocumentService) record(ctx context.Context) {
	owner, _ := common.OwnerFromContext(ctx)
	m.owners = append(m.owners, owner)
}

func (m *mockDocumentService) Ingest(ctx context.Context, req *interfaces.IngestRequest) (*models.Document, error) {
	m.record(ctx)
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, req)
	}
	return &models.Document{ID: "doc_1", Name: req.FileName, FileType: "text/plain", Chunks: []models.Chunk{{Text: "a"}}}, nil
}

func (m *mockDocumentService) List(ctx context.Context) ([]models.DocumentSummary, error) {
	m.record(ctx)
	return m.docs, nil
}

func (m *mockDocumentService) Get(ctx context.Context, documentID string) (*models.Document, error) {
	m.record(ctx)
	if documentID != "doc_1" {
		return nil, common.ErrNotFound
	}
	page := 1
	return &models.Document{
		ID:     "doc_1",
		Name:   "report.pdf",
		Chunks: []models.Chunk{{Text: "Quarterly revenue grew.", Embedding: []float32{0.1, 0.2}, SourcePage: &page}},
	}, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, documentID string) error {
	m.record(ctx)
	m.deleted = append(m.deleted, documentID)
	return nil
}

type mockChatService struct {
	askFunc func(ctx context.Context, req *interfaces.AskRequest) (*interfaces.AskResponse, error)
	asked   []*interfaces.AskRequest
	chat    *models.Chat
}

func (m *mockChatService) Ask(ctx context.Context, req *interfaces.AskRequest) (*interfaces.AskResponse, error) {
	m.asked = append(m.asked, req)
	if m.askFunc != nil {
		return m.askFunc(ctx, req)
	}
	return &interfaces.AskResponse{
		ChatID:    "chat_1",
		Answer:    "Revenue grew 4%.",
		FollowUps: []string{"Why did it grow?"},
		Sources:   []interfaces.SourceRef{{DocumentID: "doc_1", DocumentName: "report.pdf", Score: 0.91}},
	}, nil
}

func (m *mockChatService) ListChats(ctx context.Context) ([]*models.Chat, error) {
	return []*models.Chat{m.chat}, nil
}

func (m *mockChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	if chatID != m.chat.ID {
		return nil, common.ErrNotFound
	}
	return m.chat, nil
}

func (m *mockChatService) DeleteChat(ctx context.Context, chatID string) error {
	return nil
}

type mockExporter struct{}

func (mockExporter) ChatToMarkdown(chat *models.Chat) string { return "# Chat " + chat.ID }

func (mockExporter) ChatToPDF(ctx context.Context, chat *models.Chat) ([]byte, error) {
	return []byte("%PDF-1.3 fake"), nil
}

func setupTestServices(t *testing.T) (*mockDocumentService, *mockChatService) {
	t.Helper()
	docs := &mockDocumentService{}
	chats := &mockChatService{chat: &models.Chat{
		ID:        "chat_1",
		OwnerID:   "alice",
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Turns: []models.ConversationTurn{
			{Role: models.TurnRoleUser, Content: "How did revenue do?"},
			{Role: models.TurnRoleAssistant, Content: "It grew."},
		},
	}}

	documentService = docs
	chatService = chats
	exportService = mockExporter{}
	t.Cleanup(func() {
		documentService = nil
		chatService = nil
		exportService = nil
		ownerFlag = ""
		outputFormat = "text"
		askChatID = ""
		askImagePath = ""
		ingestName = ""
		ingestTags = nil
		exportFormat = "pdf"
		exportOut = ""
		rootCmd.SetArgs(nil)
	})
	return docs, chats
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"ingest", "ask", "docs", "chats", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd_RunsWithoutApp(t *testing.T) {
	setupTestServices(t)
	documentService = nil
	chatService = nil

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docqa version")
}

func TestAskCmd_TextOutput(t *testing.T) {
	t.Log("=== Testing ask command")

	_, chats := setupTestServices(t)

	out, err := execute(t, "ask", "--owner", "alice", "--chat", "chat_1", "How", "did", "revenue", "do?")
	require.NoError(t, err)

	require.Len(t, chats.asked, 1)
	assert.Equal(t, "How did revenue do?", chats.asked[0].Question)
	assert.Equal(t, "chat_1", chats.asked[0].ChatID)
	assert.Contains(t, out, "Revenue grew 4%.")
	assert.Contains(t, out, "1. Why did it grow?")
	assert.Contains(t, out, "report.pdf (score 0.910)")
	assert.Contains(t, out, "Chat: chat_1")

	t.Log("✓ Answer, follow-ups and sources printed")
}

func TestAskCmd_ImageAttachment(t *testing.T) {
	_, chats := setupTestServices(t)

	imagePath := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("\x89PNG\r\n\x1a\n"), 0644))

	_, err := execute(t, "ask", "--owner", "alice", "--image", imagePath)
	require.NoError(t, err)
	require.Len(t, chats.asked, 1)
	assert.Empty(t, chats.asked[0].Question)
	assert.Equal(t, "chart.png", chats.asked[0].ImageName)
	assert.NotEmpty(t, chats.asked[0].Image)
}

func TestAskCmd_RequiresQuestionOrImage(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ask", "--owner", "alice")
	assert.Error(t, err)
}

func TestAskCmd_RequiresOwner(t *testing.T) {
	setupTestServices(t)
	t.Setenv("DOCQA_OWNER", "")

	_, err := execute(t, "ask", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingOwner)
}

func TestAskCmd_OwnerFromEnvironment(t *testing.T) {
	docs, _ := setupTestServices(t)
	t.Setenv("DOCQA_OWNER", "bob")

	_, err := execute(t, "docs", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, docs.owners)
}

func TestIngestCmd_RejectsOversizedFile(t *testing.T) {
	docs, _ := setupTestServices(t)
	config = common.NewDefaultConfig()
	config.Limits.MaxUploadBytes = 8
	t.Cleanup(func() { config = nil })

	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("more than eight bytes"), 0644))

	called := false
	docs.ingestFunc = func(ctx context.Context, req *interfaces.IngestRequest) (*models.Document, error) {
		called = true
		return nil, nil
	}

	_, err := execute(t, "ingest", "--owner", "alice", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
	assert.False(t, called)
}

func TestIngestCmd(t *testing.T) {
	docs, _ := setupTestServices(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	var got *interfaces.IngestRequest
	docs.ingestFunc = func(ctx context.Context, req *interfaces.IngestRequest) (*models.Document, error) {
		got = req
		return &models.Document{ID: "doc_9", Name: "Notes", FileType: "text/plain", Chunks: []models.Chunk{{Text: "hello world"}}}, nil
	}

	out, err := execute(t, "ingest", "--owner", "alice", "--name", "Notes", "--tags", "a,b", path)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "notes.txt", got.FileName)
	assert.Equal(t, "Notes", got.Name)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, []byte("hello world"), got.Data)
	assert.Contains(t, out, "Ingested Notes")
	assert.Contains(t, out, "doc_9")
}

func TestDocsCmd_JSONAndYAMLOutput(t *testing.T) {
	docs, _ := setupTestServices(t)
	docs.docs = []models.DocumentSummary{{ID: "doc_1", Name: "report.pdf", ChunksCount: 3}}

	out, err := execute(t, "docs", "list", "--owner", "alice", "--output", "json")
	require.NoError(t, err)
	var listed []models.DocumentSummary
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 3, listed[0].ChunksCount)

	out, err = execute(t, "docs", "show", "doc_1", "--owner", "alice", "--output", "yaml")
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "doc_1", shown["id"])
	assert.NotContains(t, out, "embedding", "chunk previews must not carry vectors")
}

func TestDocsCmd_RejectsUnknownOutput(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "docs", "list", "--owner", "alice", "--output", "xml")
	assert.Error(t, err)
}

func TestDocsDeleteCmd(t *testing.T) {
	docs, _ := setupTestServices(t)

	out, err := execute(t, "docs", "delete", "doc_1", "--owner", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_1"}, docs.deleted)
	assert.Contains(t, out, "Deleted document doc_1")
}

func TestChatsCmd_ListShowExport(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "chats", "list", "--owner", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "chat_1  How did revenue do?")

	out, err = execute(t, "chats", "show", "chat_1", "--owner", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "It grew.")

	path := filepath.Join(t.TempDir(), "chat.pdf")
	_, err = execute(t, "chats", "export", "chat_1", "--owner", "alice", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestErrorMessage(t *testing.T) {
	assert.Contains(t, errorMessage(&common.ConfigurationError{Field: "gemini.api_key", Reason: "not set"}), "gemini.api_key")
	assert.Equal(t, common.UserMessage(common.ErrTenantViolation), errorMessage(common.ErrTenantViolation))
	assert.Equal(t, common.UserMessage(&common.GenerationFailedError{Attempts: 4}), errorMessage(&common.GenerationFailedError{Attempts: 4}))
}
