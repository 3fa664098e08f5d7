package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KostasZigo/gitcore/internal/objects"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit -m <message>",
	Short: "Record the index as a new commit on the current branch",
	Long: `Write a tree from the index, create a commit whose parent is the current
branch tip and move the branch to it.

The author is taken from --author or from [user] in .git/gogit.toml.`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runCommit,
}

var (
	messageFlag string
	authorFlag  string
)

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Commit message")
	commitCmd.Flags().StringVar(&authorFlag, "author", "", `Override the author, as "Name <email>"`)
	commitCmd.MarkFlagRequired("message")
}

func runCommit(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(messageFlag) == "" {
		return errors.New("aborting commit due to empty commit message")
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	identity := authorFlag
	if identity == "" {
		identity = repo.Config.Identity()
	}
	if identity == "" {
		return errors.New("author identity unknown: set [user] name and email in .git/gogit.toml or pass --author")
	}
	author, err := objects.ParseAuthor(identity)
	if err != nil {
		return err
	}

	var hash string
	err = withLock(cmd, repo, func() error {
		hash, err = repo.Commit(messageFlag, author)
		return err
	})
	if err != nil {
		return err
	}

	branch, err := repo.Refs.CurrentBranch()
	if err != nil {
		branch = "detached HEAD"
	}
	subject, _, _ := strings.Cut(messageFlag, "\n")
	fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, hash[:7], subject)
	return nil
}
