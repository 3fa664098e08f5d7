package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// Lock takes the repository-wide advisory lock used by commands that modify
// the index or refs. The returned func releases it.
func Lock(ctx context.Context, root string) (func() error, error) {
	fileLock := flock.New(filepath.Join(root, constants.GitDir, constants.LockFile))

	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock repository: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("repository at %s is locked by another process", root)
	}

	return fileLock.Unlock, nil
}
