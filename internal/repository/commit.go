package repository

import (
	"fmt"
	"log/slog"

	"github.com/KostasZigo/gitcore/internal/config"
	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/index"
	"github.com/KostasZigo/gitcore/internal/objects"
)

// Commit snapshots the index as a tree, records it as a commit on top of the
// current branch tip and advances the branch. The timestamp comes from the
// repository clock in its own zone.
func (r *Repository) Commit(message string, author objects.Author) (string, error) {
	entries, err := index.Read(r.root)
	if err != nil {
		return "", err
	}

	treeHash, err := r.WriteTree(entries)
	if err != nil {
		return "", err
	}

	parent, _, err := r.Refs.CurrentCommit()
	if err != nil {
		return "", fmt.Errorf("failed to resolve parent: %w", err)
	}

	author.Timestamp = r.clock()
	commit, err := objects.NewCommit(treeHash, parent, message, author)
	if err != nil {
		return "", err
	}
	if err := r.Store.Store(commit); err != nil {
		return "", fmt.Errorf("failed to store commit: %w", err)
	}

	if err := r.Refs.Advance(commit.Hash()); err != nil {
		return "", err
	}

	slog.Debug("Created commit", "hash", commit.Hash(), "tree", treeHash, "parent", parent)
	return commit.Hash(), nil
}

// Log returns up to limit commits reachable from the current commit through
// first parents, newest first. A limit of zero or less means no limit.
func (r *Repository) Log(limit int) ([]*objects.Commit, error) {
	hash, ok, err := r.Refs.CurrentCommit()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.walkHistory(hash, limit)
}

// LogBranch is Log starting from the tip of branch instead of HEAD.
// A branch without commits is reported as NotFound.
func (r *Repository) LogBranch(branch string, limit int) ([]*objects.Commit, error) {
	if err := config.ValidateBranch(branch); err != nil {
		return nil, err
	}
	hash, err := r.Refs.MustResolve(constants.HeadsRefPrefix + branch)
	if err != nil {
		return nil, err
	}
	return r.walkHistory(hash, limit)
}

func (r *Repository) walkHistory(hash string, limit int) ([]*objects.Commit, error) {
	var history []*objects.Commit
	for hash != "" && (limit <= 0 || len(history) < limit) {
		commit, err := r.Store.ReadCommit(hash)
		if err != nil {
			return history, fmt.Errorf("failed to read commit %s: %w", hash, err)
		}
		history = append(history, commit)
		hash = commit.ParentHash()
	}
	return history, nil
}
