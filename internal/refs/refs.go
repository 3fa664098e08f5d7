// Package refs resolves and advances the active branch pointer.
package refs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"go.uber.org/multierr"
)

const symbolicPrefix = "ref: "

// Resolver reads HEAD and the branch files under refs/heads.
type Resolver struct {
	gitDir        string
	defaultBranch string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDefaultBranch sets the branch assumed when HEAD is missing.
func WithDefaultBranch(branch string) ResolverOption {
	return func(r *Resolver) {
		if branch != "" {
			r.defaultBranch = branch
		}
	}
}

// NewResolver returns a Resolver for the repository rooted at repoPath.
func NewResolver(repoPath string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		gitDir:        filepath.Join(repoPath, constants.GitDir),
		defaultBranch: constants.DefaultBranch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// head is the parsed content of HEAD: either a symbolic ref or a detached id.
type head struct {
	ref      string // e.g. "refs/heads/master"
	detached string
}

func (r *Resolver) readHead() (head, error) {
	data, err := os.ReadFile(filepath.Join(r.gitDir, constants.Head))
	if errors.Is(err, fs.ErrNotExist) {
		return head{ref: constants.HeadsRefPrefix + r.defaultBranch}, nil
	}
	if err != nil {
		return head{}, fmt.Errorf("failed to read %s: %w", constants.Head, err)
	}

	content := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
		target = strings.TrimSpace(target)
		if !strings.HasPrefix(target, constants.Refs+"/") || strings.Contains(target, "..") {
			return head{}, fmt.Errorf("invalid %s target %q", constants.Head, target)
		}
		return head{ref: target}, nil
	}
	if content == "" {
		return head{}, fmt.Errorf("empty %s file", constants.Head)
	}
	return head{detached: content}, nil
}

// CurrentBranch returns the branch HEAD points at, or an error when detached.
func (r *Resolver) CurrentBranch() (string, error) {
	h, err := r.readHead()
	if err != nil {
		return "", err
	}
	if h.ref == "" {
		return "", fmt.Errorf("HEAD is detached at %s", h.detached)
	}
	return strings.TrimPrefix(h.ref, constants.HeadsRefPrefix), nil
}

// CurrentCommit returns the id the active branch points at.
// ok is false when no commit has been made on the branch yet.
func (r *Resolver) CurrentCommit() (id string, ok bool, err error) {
	h, err := r.readHead()
	if err != nil {
		return "", false, err
	}
	if h.detached != "" {
		return h.detached, true, nil
	}
	return r.Resolve(h.ref)
}

// Resolve reads a ref file such as "refs/heads/master".
// A missing ref is reported with ok false and no error.
func (r *Resolver) Resolve(ref string) (id string, ok bool, err error) {
	data, err := os.ReadFile(r.refPath(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read ref %s: %w", ref, err)
	}

	id = strings.TrimSpace(string(data))
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// MustResolve is Resolve with a missing ref reported as a NotFound error.
func (r *Resolver) MustResolve(ref string) (string, error) {
	id, ok, err := r.Resolve(ref)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", gerrors.New(gerrors.KindNotFound, "resolve ref", "ref "+ref+" not found")
	}
	return id, nil
}

// Advance points the active branch at id, replacing its previous value.
// With a detached HEAD, HEAD itself is rewritten.
func (r *Resolver) Advance(id string) error {
	h, err := r.readHead()
	if err != nil {
		return err
	}

	target := h.ref
	path := r.refPath(h.ref)
	if h.detached != "" {
		target = constants.Head
		path = filepath.Join(r.gitDir, constants.Head)
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create ref directory: %w", err)
	}
	if err := writeRef(path, id); err != nil {
		return fmt.Errorf("failed to update %s: %w", target, err)
	}

	slog.Debug("Advanced ref", "ref", target, "commit", id)
	return nil
}

func (r *Resolver) refPath(ref string) string {
	return filepath.Join(r.gitDir, filepath.FromSlash(ref))
}

// writeRef replaces path with "<id>\n" through a temp file and rename.
func writeRef(path, id string) (retErr error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ref-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(id + "\n"); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Chmod(constants.FilePerms); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
