package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"github.com/KostasZigo/gitcore/internal/repository"
	"github.com/spf13/cobra"
)

// lockTimeout bounds how long mutating commands wait for another writer.
const lockTimeout = 5 * time.Second

var verboseFlag bool

// rootCmd defines the base command for the gogit CLI.
// All subcommands (init, add, commit, etc.) register under this root.
var rootCmd = &cobra.Command{
	Use:   "gogit",
	Short: "A simplified Git implementation in GO",
	Long: `GoGit is a simplified Git Implementation developed in GO. It reads and writes
the on-disk formats of Git itself: loose objects, the staging index and branch refs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
			slog.SetDefault(slog.New(handler))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug output to stderr")
}

// Execute runs the root command and maps failures to exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(gerrors.ExitCode(err))
	}
}

// exactArgs validates command receives exactly n positional arguments.
// enables usage printing in case of error
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires exactly %d argument (%s), received %d", cmd.Name(), n, what, len(args))
		}
		return nil
	}
}

// maximumArgs validates command receives at most n positional arguments.
func maximumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts at most %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}

// minimumArgs validates command receives at least n positional arguments.
func minimumArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires at least %d argument (%s), received %d", cmd.Name(), n, what, len(args))
		}
		return nil
	}
}

// findRepoRoot locates .git directory by walking up directory tree.
func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		gitPath := filepath.Join(dir, constants.GitDir)
		if info, err := os.Stat(gitPath); err == nil && info.IsDir() {
			return dir, nil
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", gerrors.New(gerrors.KindNotFound, "find repository",
				fmt.Sprintf("%s directory not found", constants.GitDir))
		}
		dir = parent
	}
}

// openRepository opens the repository containing the working directory.
func openRepository() (*repository.Repository, error) {
	root, err := findRepoRoot()
	if err != nil {
		return nil, err
	}
	return repository.Open(root)
}

// withLock runs fn while holding the repository lock.
func withLock(cmd *cobra.Command, repo *repository.Repository, fn func() error) (retErr error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	unlock, err := repository.Lock(ctx, repo.Root())
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to unlock repository: %w", err)
		}
	}()

	return fn()
}
