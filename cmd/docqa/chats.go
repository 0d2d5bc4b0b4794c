package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/docqa/internal/models"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage chats",
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runChatsList,
}

var chatsShowCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Print a chat transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsShow,
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete [chat-id]",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsDelete,
}

var chatsExportCmd = &cobra.Command{
	Use:   "export [chat-id]",
	Short: "Export a chat transcript as PDF or markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsExport,
}

var (
	exportFormat string
	exportOut    string
)

func init() {
	chatsExportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "Export format: pdf or md")
	chatsExportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (defaults to <chat-id>.<format>)")

	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsShowCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)
	chatsCmd.AddCommand(chatsExportCmd)
	rootCmd.AddCommand(chatsCmd)
}

// chatSummary is the listing form of a chat
type chatSummary struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Turns     int    `json:"turns" yaml:"turns"`
	UpdatedAt string `json:"updated_at" yaml:"updated_at"`
}

func runChatsList(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	chats, err := chatService.ListChats(ctx)
	if err != nil {
		return err
	}

	summaries := make([]chatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, chatSummary{
			ID:        chat.ID,
			Title:     chatTitle(chat),
			Turns:     len(chat.Turns),
			UpdatedAt: chat.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	return render(cmd.OutOrStdout(), summaries, func(w io.Writer) {
		if len(summaries) == 0 {
			fmt.Fprintln(w, "No chats found")
			return
		}
		for _, s := range summaries {
			fmt.Fprintf(w, "%s  %s\n", s.ID, s.Title)
			fmt.Fprintf(w, "    Turns: %d  Updated: %s\n", s.Turns, s.UpdatedAt)
		}
		fmt.Fprintf(w, "\nTotal: %d chats\n", len(summaries))
	})
}

func runChatsShow(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	chat, err := chatService.GetChat(ctx, args[0])
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), chat, func(w io.Writer) {
		fmt.Fprintf(w, "Chat: %s\n", chat.ID)
		for _, turn := range chat.Turns {
			speaker := "You"
			if turn.Role == models.TurnRoleAssistant {
				speaker = "Assistant"
			}
			fmt.Fprintf(w, "\n[%s] %s\n", turn.Timestamp.Local().Format("2006-01-02 15:04"), speaker)
			if turn.AttachmentRef != "" {
				fmt.Fprintf(w, "(attachment: %s)\n", turn.AttachmentRef)
			}
			fmt.Fprintln(w, turn.Content)
		}
	})
}

func runChatsDelete(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	if err := chatService.DeleteChat(ctx, args[0]); err != nil {
		return err
	}

	result := map[string]string{"deleted": args[0]}
	return render(cmd.OutOrStdout(), result, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted chat %s\n", args[0])
	})
}

func runChatsExport(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	chat, err := chatService.GetChat(ctx, args[0])
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(exportFormat) {
	case "pdf":
		data, err = exportService.ChatToPDF(ctx, chat)
		if err != nil {
			return err
		}
	case "md", "markdown":
		exportFormat = "md"
		data = []byte(exportService.ChatToMarkdown(chat))
	default:
		return fmt.Errorf("unsupported export format %q (use pdf or md)", exportFormat)
	}

	path := exportOut
	if path == "" {
		path = chat.ID + "." + strings.ToLower(exportFormat)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	result := map[string]any{"chat_id": chat.ID, "path": path, "bytes": len(data)}
	return render(cmd.OutOrStdout(), result, func(w io.Writer) {
		fmt.Fprintf(w, "Exported chat %s to %s (%d bytes)\n", chat.ID, path, len(data))
	})
}

// chatTitle is the first user question, shortened
func chatTitle(chat *models.Chat) string {
	for _, turn := range chat.Turns {
		if turn.Role == models.TurnRoleUser {
			return preview(turn.Content, 60)
		}
	}
	return "(empty)"
}
