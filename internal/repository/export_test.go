package repository

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/KostasZigo/gitcore/internal/index"
	"github.com/KostasZigo/gitcore/testutils"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/stretchr/testify/require"
)

const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// openTestRepo initializes a repository whose clock always returns now.
func openTestRepo(t *testing.T, now time.Time) *Repository {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithInit(t)
	repo, err := Open(repoPath, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return repo
}

// stageBlob stores content as a blob and returns an index entry for it.
func stageBlob(t *testing.T, repo *Repository, path, content string, mode uint32) index.Entry {
	t.Helper()

	hash, err := repo.Store.Write(utils.BlobObjectType, []byte(content))
	require.NoError(t, err)

	raw, err := hex.DecodeString(hash)
	require.NoError(t, err)

	entry := index.Entry{Mode: mode, Size: uint32(len(content)), Path: path}
	copy(entry.Hash[:], raw)
	return entry
}

// readObjectContent returns the raw payload of a stored object.
func readObjectContent(t *testing.T, repo *Repository, hash string) string {
	t.Helper()

	_, content, err := repo.Store.Read(hash)
	require.NoError(t, err)
	return string(content)
}
