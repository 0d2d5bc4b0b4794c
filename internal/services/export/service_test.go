package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/models"
)

func sampleChat(answer string) *models.Chat {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	return &models.Chat{
		ID:        "chat_1",
		OwnerID:   "alice",
		CreatedAt: at,
		UpdatedAt: at,
		Turns: []models.ConversationTurn{
			{Role: models.TurnRoleUser, Content: "What is in the report?", Timestamp: at},
			{Role: models.TurnRoleAssistant, Content: answer, Timestamp: at.Add(time.Second)},
			{Role: models.TurnRoleUser, Content: "Image query", Timestamp: at.Add(time.Minute), AttachmentRef: "chart.png"},
			{Role: models.TurnRoleAssistant, Content: "A bar chart.", Timestamp: at.Add(time.Minute + time.Second)},
		},
	}
}

func TestChatToMarkdown(t *testing.T) {
	t.Log("=== Testing markdown transcript")

	service := NewService(0, arbor.NewLogger())
	md := service.ChatToMarkdown(sampleChat("It covers **revenue**."))

	assert.Contains(t, md, "# Chat chat_1")
	assert.Contains(t, md, "4 turns")
	assert.Contains(t, md, "## You")
	assert.Contains(t, md, "## Assistant")
	assert.Contains(t, md, "It covers **revenue**.")
	assert.Contains(t, md, "Attachment: `chart.png`")
	assert.Less(t, bytes.Index([]byte(md), []byte("What is in the report?")), bytes.Index([]byte(md), []byte("A bar chart.")))

	t.Log("✓ Turns rendered in order")
}

func TestChatToPDF(t *testing.T) {
	t.Log("=== Testing PDF transcript rendering")

	service := NewService(10, arbor.NewLogger())

	tests := []struct {
		name   string
		answer string
	}{
		{"plain answer", "The report covers Q3 revenue."},
		{"lists and emphasis", "Key points:\n\n1. **Revenue** grew\n2. *Costs* fell\n\n- nested\n  - deeper"},
		{"code and table", "```go\nfunc main() {}\n```\n\n| Region | Growth |\n|---|---|\n| EU | 4% |\n| US | 6% |"},
		{"quote and rule", "> quoted line\n\n---\n\nAfter the rule."},
		{"non-latin text", "Café naïve résumé, 東京 and emoji 🎉"},
		{"empty answer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := service.ChatToPDF(context.Background(), sampleChat(tt.answer))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output must be a PDF")
		})
	}

	t.Log("✓ Transcripts render to PDF")
}

func TestChatToPDF_Rejections(t *testing.T) {
	t.Log("=== Testing PDF rendering rejections")

	service := NewService(10, arbor.NewLogger())

	_, err := service.ChatToPDF(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = service.ChatToPDF(ctx, sampleChat("x"))
	assert.ErrorIs(t, err, context.Canceled)

	t.Log("✓ Nil chat and cancelled context rejected")
}
