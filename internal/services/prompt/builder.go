package prompt

import (
	"strings"

	"github.com/ternarybob/docqa/internal/models"
)

// MaxHistoryTurns bounds the chat history rendered into a prompt
const MaxHistoryTurns = 5

// Spec is an assembled prompt ready for the answer generator
type Spec struct {
	Text          string
	QueryType     QueryType
	HasImage      bool
	ContextChunks int
}

// Build assembles the prompt from retrieved chunks (in ranking order), the
// recent chat turns (oldest first) and the question. Only the last
// MaxHistoryTurns turns are used. Same inputs produce the same text.
func Build(question string, retrieved []models.RetrievalResult, recent []models.ConversationTurn, hasImage bool) Spec {
	question = strings.TrimSpace(question)
	queryType := ClassifyQuery(question)

	var b strings.Builder

	if history := renderHistory(recent); history != "" {
		b.WriteString(SectionHistory)
		b.WriteString("\n")
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	contextTexts := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		if text := strings.TrimSpace(r.Text); text != "" {
			contextTexts = append(contextTexts, text)
		}
	}

	b.WriteString(SectionContext)
	b.WriteString("\n")
	b.WriteString(strings.Join(contextTexts, ContextSeparator))
	b.WriteString("\n\n")

	b.WriteString(SectionQuestion)
	b.WriteString(" ")
	b.WriteString(question)
	b.WriteString("\n\n")

	b.WriteString(SectionInstructions)
	b.WriteString("\n")
	b.WriteString(renderInstructions(queryType, len(contextTexts) > 0, hasImage))

	return Spec{
		Text:          b.String(),
		QueryType:     queryType,
		HasImage:      hasImage,
		ContextChunks: len(contextTexts),
	}
}

func renderHistory(turns []models.ConversationTurn) string {
	if len(turns) > MaxHistoryTurns {
		turns = turns[len(turns)-MaxHistoryTurns:]
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		label := "User"
		if turn.Role == models.TurnRoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+turn.Content)
	}
	return strings.Join(lines, "\n\n")
}

func renderInstructions(queryType QueryType, hasContext, hasImage bool) string {
	sections := make([]string, 0, 4)

	preamble := instructionPreamble
	if !hasContext {
		preamble += "\n" + noContextRule
	}
	if hasImage {
		preamble += "\n" + imageRule
	}
	sections = append(sections, preamble)

	guidance, ok := answerGuidance[queryType]
	if !ok {
		guidance = answerGuidance[QueryTypeGeneral]
	}
	sections = append(sections, guidance, generalRules, outputFormat)

	return strings.Join(sections, "\n\n")
}
