package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateRefCmd = &cobra.Command{
	Use:          "update-ref <commit>",
	Short:        "Point the current branch at an existing commit",
	SilenceUsage: true,
	Args:         exactArgs(1, "commit"),
	RunE:         runUpdateRef,
}

func init() {
	rootCmd.AddCommand(updateRefCmd)
}

func runUpdateRef(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	commit, err := repo.Store.ReadCommit(args[0])
	if err != nil {
		return fmt.Errorf("cannot update ref: %w", err)
	}

	return withLock(cmd, repo, func() error {
		return repo.Refs.Advance(commit.Hash())
	})
}
