// Package repository ties the object store, the index and the refs together
// into tree and commit creation.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KostasZigo/gitcore/internal/config"
	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"github.com/KostasZigo/gitcore/internal/objects"
	"github.com/KostasZigo/gitcore/internal/refs"
)

// Repository is an opened working tree with its .git directory.
type Repository struct {
	root   string
	Config *config.Config
	Store  *objects.ObjectStore
	Refs   *refs.Resolver
	clock  func() time.Time
}

// Option configures a Repository at Open.
type Option func(*Repository)

// WithClock replaces time.Now as the source of commit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Repository) {
		r.clock = clock
	}
}

// Open loads the repository whose .git directory lives directly under root.
func Open(root string, opts ...Option) (*Repository, error) {
	gitDir := filepath.Join(root, constants.GitDir)
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil, gerrors.Wrap(gerrors.KindNotFound, "open repository",
			"not a repository: "+root, err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	r := &Repository{
		root:   root,
		Config: cfg,
		Store:  objects.NewObjectStore(root, objects.WithCompressionLevel(cfg.Core.Compression)),
		Refs:   refs.NewResolver(root, refs.WithDefaultBranch(cfg.Core.Branch)),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root returns the working tree directory.
func (r *Repository) Root() string {
	return r.root
}

// RelativePath converts path (absolute or relative to the working directory)
// into a slash separated path relative to the repository root.
func (r *Repository) RelativePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(r.root)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository at %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}
