package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question from the owner's most relevant document chunks and the
recent turns of the chat. Pass --chat to continue a conversation and --image to
ask about a picture.`,
	RunE: runAsk,
}

var (
	askChatID    string
	askImagePath string
)

func init() {
	askCmd.Flags().StringVar(&askChatID, "chat", "", "Chat ID to continue")
	askCmd.Flags().StringVar(&askImagePath, "image", "", "Image file to ask about")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && askImagePath == "" {
		return fmt.Errorf("a question or --image is required")
	}

	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}
	if err := requireProviders(); err != nil {
		return err
	}

	req := &interfaces.AskRequest{
		ChatID:   askChatID,
		Question: question,
	}
	if askImagePath != "" {
		image, err := common.ReadFileLimited(askImagePath, uploadLimits().MaxImageBytes)
		if err != nil {
			return fmt.Errorf("failed to read image %s: %w", askImagePath, err)
		}
		req.Image = image
		req.ImageName = filepath.Base(askImagePath)
	}

	resp, err := chatService.Ask(ctx, req)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), resp, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", resp.Answer)

		if len(resp.FollowUps) > 0 {
			fmt.Fprintln(w, "\nFollow-up questions:")
			for i, q := range resp.FollowUps {
				fmt.Fprintf(w, "  %d. %s\n", i+1, q)
			}
		}

		if len(resp.Sources) > 0 {
			fmt.Fprintln(w, "\nSources:")
			for _, src := range resp.Sources {
				page := ""
				if src.Page != nil {
					page = fmt.Sprintf(", page %d", *src.Page)
				}
				fmt.Fprintf(w, "  - %s%s (score %.3f)\n", src.DocumentName, page, src.Score)
			}
		}

		fmt.Fprintf(w, "\nChat: %s\n", resp.ChatID)
	})
}
