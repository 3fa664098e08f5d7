package repository

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/KostasZigo/gitcore/internal/index"
	"github.com/KostasZigo/gitcore/internal/objects"
)

// stagedPath is an index entry with the path remaining below the current level.
type stagedPath struct {
	rel   string
	entry index.Entry
}

// WriteTree stores one tree object per directory of entries and returns
// the id of the root tree.
func (r *Repository) WriteTree(entries []index.Entry) (string, error) {
	staged := make([]stagedPath, len(entries))
	for i, e := range entries {
		staged[i] = stagedPath{rel: e.Path, entry: e}
	}

	hash, err := r.writeTreeLevel(staged, "")
	if err != nil {
		return "", fmt.Errorf("failed to write tree: %w", err)
	}

	slog.Debug("Wrote tree", "hash", hash, "entries", len(entries))
	return hash, nil
}

// writeTreeLevel groups staged paths by their first component. Files at this
// level become blob entries; every group becomes a subtree written first.
func (r *Repository) writeTreeLevel(staged []stagedPath, prefix string) (string, error) {
	var treeEntries []objects.TreeEntry
	files := make(map[string]bool)
	groups := make(map[string][]stagedPath)

	for _, s := range staged {
		name, rest, nested := strings.Cut(s.rel, "/")
		if name == "" || nested && rest == "" {
			return "", fmt.Errorf("invalid path %q in index", s.entry.Path)
		}

		if !nested {
			if files[name] {
				return "", fmt.Errorf("duplicate path %q in index", s.entry.Path)
			}
			files[name] = true

			entry, err := objects.NewTreeEntry(objects.ModeFromIndex(s.entry.Mode), name, s.entry.HashHex())
			if err != nil {
				return "", fmt.Errorf("entry %q: %w", s.entry.Path, err)
			}
			treeEntries = append(treeEntries, *entry)
			continue
		}

		groups[name] = append(groups[name], stagedPath{rel: rest, entry: s.entry})
	}

	// sorted so subtrees are always written in the same order
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if files[name] {
			return "", fmt.Errorf("%q is both a file and a directory", prefix+name)
		}

		subtreeHash, err := r.writeTreeLevel(groups[name], prefix+name+"/")
		if err != nil {
			return "", err
		}

		entry, err := objects.NewTreeEntry(objects.ModeDirectory, name, subtreeHash)
		if err != nil {
			return "", err
		}
		treeEntries = append(treeEntries, *entry)
	}

	tree, err := objects.NewTree(treeEntries)
	if err != nil {
		return "", err
	}
	if err := r.Store.Store(tree); err != nil {
		return "", err
	}
	return tree.Hash(), nil
}
