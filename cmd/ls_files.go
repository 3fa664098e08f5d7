package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitcore/internal/index"
	"github.com/spf13/cobra"
)

var lsFilesCmd = &cobra.Command{
	Use:          "ls-files",
	Short:        "List the paths recorded in the index",
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runLsFiles,
}

var stageFlag bool

func init() {
	rootCmd.AddCommand(lsFilesCmd)

	lsFilesCmd.Flags().BoolVarP(&stageFlag, "stage", "s", false, "Show mode, object id and stage of each entry")
}

func runLsFiles(cmd *cobra.Command, args []string) error {
	root, err := findRepoRoot()
	if err != nil {
		return err
	}

	entries, err := index.Read(root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range entries {
		if stageFlag {
			// stage is always 0 since merges are never recorded
			fmt.Fprintf(out, "%06o %s 0\t%s\n", e.Mode, e.HashHex(), e.Path)
			continue
		}
		fmt.Fprintln(out, e.Path)
	}
	return nil
}
