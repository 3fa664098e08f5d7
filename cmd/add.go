package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/index"
	"github.com/KostasZigo/gitcore/internal/repository"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <pathspec>...",
	Short: "Add file contents to the index",
	Long: `Store each file as a blob and record it in the index, replacing any existing
entry for the same path. Directories are added recursively; .git is skipped.`,
	SilenceUsage: true,
	Args:         minimumArgs(1, "pathspec"),
	RunE:         runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	return withLock(cmd, repo, func() error {
		entries, err := index.Read(repo.Root())
		if err != nil {
			return err
		}

		for _, path := range args {
			staged, err := stagePath(repo, path)
			if err != nil {
				return err
			}
			for _, e := range staged {
				entries = index.Upsert(entries, e)
			}
		}

		return index.Write(repo.Root(), entries)
	})
}

// stagePath returns index entries for a file, or for every file below a directory.
func stagePath(repo *repository.Repository, path string) ([]index.Entry, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("pathspec %q did not match any files", path)
	}
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		e, err := stageFile(repo, path, info)
		if err != nil {
			return nil, err
		}
		return []index.Entry{e}, nil
	}

	var staged []index.Entry
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == constants.GitDir {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && info.Mode()&fs.ModeSymlink == 0 {
			return nil
		}

		e, err := stageFile(repo, p, info)
		if err != nil {
			return err
		}
		staged = append(staged, e)
		return nil
	})
	return staged, err
}

// stageFile stores the blob for path and builds its index entry.
// Symlinks are stored as their target path.
func stageFile(repo *repository.Repository, path string, info fs.FileInfo) (index.Entry, error) {
	rel, err := repo.RelativePath(path)
	if err != nil {
		return index.Entry{}, err
	}
	if rel == constants.GitDir || strings.HasPrefix(rel, constants.GitDir+"/") {
		return index.Entry{}, fmt.Errorf("cannot add %s: inside %s", path, constants.GitDir)
	}

	var content []byte
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return index.Entry{}, fmt.Errorf("failed to read link %s: %w", path, err)
		}
		content = []byte(target)
	} else if content, err = os.ReadFile(path); err != nil {
		return index.Entry{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	hash, err := repo.Store.Write(utils.BlobObjectType, content)
	if err != nil {
		return index.Entry{}, fmt.Errorf("failed to store %s: %w", path, err)
	}

	return index.NewEntry(rel, info, hash)
}
