package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document",
	Long:  `Extracts the text of a txt, md, html, pdf or docx file, chunks and embeds it, and stores it for the owner.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var (
	ingestName string
	ingestTags []string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "Display name (defaults to the file name)")
	ingestCmd.Flags().StringSliceVar(&ingestTags, "tags", nil, "Comma-separated tags")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}
	if err := requireProviders(); err != nil {
		return err
	}

	path := args[0]
	data, err := common.ReadFileLimited(path, uploadLimits().MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := documentService.Ingest(ctx, &interfaces.IngestRequest{
		Name:     ingestName,
		FileName: filepath.Base(path),
		Data:     data,
		Tags:     ingestTags,
	})
	if err != nil {
		return err
	}

	summary := doc.Summary()
	return render(cmd.OutOrStdout(), summary, func(w io.Writer) {
		fmt.Fprintf(w, "Ingested %s\n", summary.Name)
		fmt.Fprintf(w, "  ID:     %s\n", summary.ID)
		fmt.Fprintf(w, "  Type:   %s\n", summary.FileType)
		fmt.Fprintf(w, "  Chunks: %d\n", summary.ChunksCount)
	})
}
