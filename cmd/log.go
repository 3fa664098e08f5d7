package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KostasZigo/gitcore/internal/objects"
	"github.com/spf13/cobra"
)

const logDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

var logCmd = &cobra.Command{
	Use:          "log [branch]",
	Short:        "Show commits reachable from the current branch, newest first",
	Long: `The 'log' command walks first parents from HEAD, or from the tip of the
given branch, and prints each commit newest first.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runLog,
}

var maxCountFlag int

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVarP(&maxCountFlag, "max-count", "n", 0, "Limit the number of commits shown (0 shows all)")
}

func runLog(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	var history []*objects.Commit
	var logErr error
	if len(args) > 0 {
		history, logErr = repo.LogBranch(args[0], maxCountFlag)
	} else {
		history, logErr = repo.Log(maxCountFlag)
	}

	// a broken parent still shows the commits read before it
	for _, commit := range history {
		writeLogEntry(cmd.OutOrStdout(), commit)
	}
	return logErr
}

func writeLogEntry(out io.Writer, commit *objects.Commit) {
	author := commit.Author()
	fmt.Fprintf(out, "commit %s\n", commit.Hash())
	fmt.Fprintf(out, "Author: %s\n", author)
	fmt.Fprintf(out, "Date:   %s\n\n", author.Timestamp.Format(logDateLayout))
	for _, line := range strings.Split(commit.Message(), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}
