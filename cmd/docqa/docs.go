package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/docqa/internal/models"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage ingested documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details and chunk previews",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}

// chunkPreview is the listing form of a chunk (no embedding)
type chunkPreview struct {
	Index int    `json:"index" yaml:"index"`
	Page  *int   `json:"page,omitempty" yaml:"page,omitempty"`
	Text  string `json:"text" yaml:"text"`
}

type documentDetail struct {
	models.DocumentSummary `yaml:",inline"`
	PageCount              int            `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	Chunks                 []chunkPreview `json:"chunks" yaml:"chunks"`
}

func runDocsList(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	docs, err := documentService.List(ctx)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), docs, func(w io.Writer) {
		if len(docs) == 0 {
			fmt.Fprintln(w, "No documents found")
			return
		}
		for _, doc := range docs {
			fmt.Fprintf(w, "%s  %s\n", doc.ID, doc.Name)
			fmt.Fprintf(w, "    Type: %s  Chunks: %d  Uploaded: %s\n",
				doc.FileType, doc.ChunksCount, doc.UploadedAt.Local().Format("2006-01-02 15:04"))
			if len(doc.Tags) > 0 {
				fmt.Fprintf(w, "    Tags: %s\n", strings.Join(doc.Tags, ", "))
			}
		}
		fmt.Fprintf(w, "\nTotal: %d documents\n", len(docs))
	})
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return err
	}

	detail := documentDetail{
		DocumentSummary: doc.Summary(),
		PageCount:       doc.PageCount,
		Chunks:          make([]chunkPreview, 0, len(doc.Chunks)),
	}
	for i, chunk := range doc.Chunks {
		detail.Chunks = append(detail.Chunks, chunkPreview{Index: i, Page: chunk.SourcePage, Text: preview(chunk.Text, 120)})
	}

	return render(cmd.OutOrStdout(), detail, func(w io.Writer) {
		fmt.Fprintf(w, "Document: %s\n\n", doc.ID)
		fmt.Fprintf(w, "  Name:     %s\n", doc.Name)
		fmt.Fprintf(w, "  File:     %s\n", doc.OriginalName)
		fmt.Fprintf(w, "  Type:     %s\n", doc.FileType)
		fmt.Fprintf(w, "  Size:     %d bytes\n", doc.Size)
		if doc.PageCount > 0 {
			fmt.Fprintf(w, "  Pages:    %d\n", doc.PageCount)
		}
		fmt.Fprintf(w, "  Uploaded: %s\n", doc.UploadedAt.Local().Format(time.RFC1123))
		fmt.Fprintf(w, "  Chunks:   %d\n\n", len(doc.Chunks))
		for _, chunk := range detail.Chunks {
			if chunk.Page != nil {
				fmt.Fprintf(w, "  [%d] p.%d %s\n", chunk.Index, *chunk.Page, chunk.Text)
			} else {
				fmt.Fprintf(w, "  [%d] %s\n", chunk.Index, chunk.Text)
			}
		}
	})
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	ctx, err := ownerContext(cmd)
	if err != nil {
		return err
	}

	if err := documentService.Delete(ctx, args[0]); err != nil {
		return err
	}

	result := map[string]string{"deleted": args[0]}
	return render(cmd.OutOrStdout(), result, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted document %s\n", args[0])
	})
}

// preview shortens text to at most n runes
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
