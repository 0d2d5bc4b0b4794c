package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/ternarybob/docqa/internal/common"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		common.LoadVersionFromFile()
		info := map[string]string{
			"version": common.GetVersion(),
			"build":   common.Build,
			"commit":  common.GitCommit,
		}
		return render(cmd.OutOrStdout(), info, func(w io.Writer) {
			fmt.Fprintf(w, "docqa version %s\n", common.GetFullVersion())
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
