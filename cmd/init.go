package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/repository"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new GoGit repository",
	Long: `The 'init' command sets up a new repository in the current directory.
It creates a .git directory with objects/, refs/ and a HEAD pointing at the initial branch.
If a repository already exists, the command will not overwrite existing data.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runInit,
}

var initialBranchFlag string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initialBranchFlag, "initial-branch", "b", "", "Name of the branch HEAD points at (default \"master\")")
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	if err := repository.InitRepository(dirPath, initialBranchFlag); err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty GoGit repository in %s\n", utils.BuildDirPath(dirPath, constants.GitDir))
	return nil
}
