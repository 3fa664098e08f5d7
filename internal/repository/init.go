package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gitcore/internal/config"
	"github.com/KostasZigo/gitcore/internal/constants"
)

// InitRepository creates the .git layout under path with HEAD pointing at branch
// and records branch as core.branch in the repository config.
// An empty branch selects the default branch.
func InitRepository(path, branch string) error {
	// Resolves and adds OS specific separator
	gitDir := filepath.Join(path, constants.GitDir)

	if branch == "" {
		branch = constants.DefaultBranch
	}
	if err := config.ValidateBranch(branch); err != nil {
		return err
	}
	if err := checkRepositoryDoesNotExist(gitDir); err != nil {
		return err
	}

	// Anything created before a failure is removed again
	var initSuccess bool
	defer func() {
		if !initSuccess {
			cleanupRepository(gitDir)
		}
	}()

	directories := []string{
		gitDir,
		filepath.Join(gitDir, constants.Objects),
		filepath.Join(gitDir, constants.Refs),
		filepath.Join(gitDir, constants.Refs, constants.Heads),
		filepath.Join(gitDir, constants.Refs, constants.Tags),
	}

	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	headFile := filepath.Join(gitDir, constants.Head)
	headContent := constants.DefaultRefPrefix + branch + "\n"

	if err := os.WriteFile(headFile, []byte(headContent), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to create %s file: %w", constants.Head, err)
	}

	cfg := config.Default()
	cfg.Core.Branch = branch
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	slog.Debug("Initialized repository", "path", gitDir, "branch", branch)
	initSuccess = true
	return nil
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("repository already exists at %s", path)
}

// cleanupRepository removes a partially initialized .git directory.
func cleanupRepository(gitDir string) {
	if _, err := os.Stat(gitDir); err != nil {
		return
	}

	slog.Debug("Cleaning up partial repository initialization", "path", gitDir)
	if err := os.RemoveAll(gitDir); err != nil {
		slog.Warn("Failed to cleanup repository directory", "path", gitDir, "error", err)
	}
}
