package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/models"
)

// formatAnswer formats an answer with follow-ups and sources as markdown
func formatAnswer(resp *interfaces.AskResponse) string {
	var sb strings.Builder
	sb.WriteString(resp.Answer)
	sb.WriteString("\n")

	if len(resp.FollowUps) > 0 {
		sb.WriteString("\n### Follow-up questions\n")
		for i, q := range resp.FollowUps {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
	}

	if len(resp.Sources) > 0 {
		sb.WriteString("\n### Sources\n")
		for _, src := range resp.Sources {
			page := ""
			if src.Page != nil {
				page = fmt.Sprintf(", page %d", *src.Page)
			}
			sb.WriteString(fmt.Sprintf("- %s (`%s`%s, score %.3f)\n", src.DocumentName, src.DocumentID, page, src.Score))
		}
	}

	sb.WriteString(fmt.Sprintf("\n_Chat: %s_\n", resp.ChatID))
	return sb.String()
}

// formatDocuments formats document summaries as markdown
func formatDocuments(docs []models.DocumentSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documents (%d)\n\n", len(docs)))
	if len(docs) == 0 {
		sb.WriteString("No documents ingested.\n")
		return sb.String()
	}

	for _, doc := range docs {
		sb.WriteString(fmt.Sprintf("- **%s** (`%s`) %s, %d chunks, uploaded %s\n",
			doc.Name, doc.ID, doc.FileType, doc.ChunksCount, doc.UploadedAt.Format(time.RFC3339)))
	}
	return sb.String()
}

// formatChats formats chat listings as markdown
func formatChats(chats []*models.Chat) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Chats (%d)\n\n", len(chats)))
	if len(chats) == 0 {
		sb.WriteString("No chats yet.\n")
		return sb.String()
	}

	for _, chat := range chats {
		title := "(empty)"
		for _, turn := range chat.Turns {
			if turn.Role == models.TurnRoleUser {
				title = turn.Content
				break
			}
		}
		sb.WriteString(fmt.Sprintf("- `%s` %s (%d turns, updated %s)\n",
			chat.ID, title, len(chat.Turns), chat.UpdatedAt.Format(time.RFC3339)))
	}
	return sb.String()
}

// formatChat formats a chat transcript as markdown
func formatChat(chat *models.Chat) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Chat %s\n\n", chat.ID))

	for _, turn := range chat.Turns {
		speaker := "User"
		if turn.Role == models.TurnRoleAssistant {
			speaker = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("**%s** (%s):\n\n%s\n\n", speaker, turn.Timestamp.Format(time.RFC3339), turn.Content))
	}
	return sb.String()
}
