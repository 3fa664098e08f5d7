package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitcore/internal/index"
	"github.com/spf13/cobra"
)

var writeTreeCmd = &cobra.Command{
	Use:          "write-tree",
	Short:        "Create tree objects from the index and print the root tree id",
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runWriteTree,
}

func init() {
	rootCmd.AddCommand(writeTreeCmd)
}

func runWriteTree(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	entries, err := index.Read(repo.Root())
	if err != nil {
		return err
	}

	hash, err := repo.WriteTree(entries)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
