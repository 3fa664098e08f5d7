package objects

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/testutils"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well known git ids used to check byte compatibility.
const (
	emptyBlobHash      = "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
	helloWorldBlobHash = "3b18e512dba79e4c8300dd08aeb37f8e728b8dad" // "hello world\n"
	emptyTreeHash      = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
)

// assertBlobHash verifies blob hash matches expected value for given content.
func assertBlobHash(t *testing.T, blob *Blob, content []byte) {
	t.Helper()

	expectedHash, err := utils.ComputeHash(content, utils.BlobObjectType)
	require.NoError(t, err)
	assert.Equal(t, expectedHash, blob.Hash())
}

// assertBlobContent verifies blob stores exact content and correct size.
func assertBlobContent(t *testing.T, blob *Blob, expectedContent []byte) {
	t.Helper()

	assert.Equal(t, len(expectedContent), blob.Size())
	assert.True(t, bytes.Equal(expectedContent, blob.Content()), "content %q, want %q", blob.Content(), expectedContent)
}

// createTreeEntry creates tree entry and fails test on error.
func createTreeEntry(t *testing.T, mode FileMode, name, hash string) TreeEntry {
	t.Helper()

	entry, err := NewTreeEntry(mode, name, hash)
	require.NoError(t, err)
	return *entry
}

// createTree creates tree from entries and fails test on error.
func createTree(t *testing.T, entries []TreeEntry) *Tree {
	t.Helper()

	tree, err := NewTree(entries)
	require.NoError(t, err)
	return tree
}

// treeEntryComparer lets cmp look at the unexported entry fields.
var treeEntryComparer = cmp.AllowUnexported(TreeEntry{})

// createTestAuthor returns test author in the given zone, truncated to seconds.
func createTestAuthor(name, email string, location *time.Location) Author {
	return Author{
		Name:      name,
		Email:     email,
		Timestamp: time.Now().In(location).Truncate(time.Second),
	}
}

// assertCommitEqual verifies two commits match in all fields.
func assertCommitEqual(t *testing.T, actual, expected *Commit) {
	t.Helper()

	assert.Equal(t, expected.hash, actual.hash, "hash")
	assert.Equal(t, expected.treeHash, actual.treeHash, "tree hash")
	assert.Equal(t, expected.parentHash, actual.parentHash, "parent hash")
	assert.Equal(t, expected.message, actual.message, "message")
	assert.Equal(t, expected.author.String(), actual.author.String(), "author")
	assert.True(t, actual.author.Timestamp.Equal(expected.author.Timestamp),
		"author timestamp %s, want %s", actual.author.Timestamp, expected.author.Timestamp)
}

// objectFilePath returns the on-disk location of an object id in repoPath.
func objectFilePath(repoPath, hash string) string {
	return filepath.Join(repoPath, constants.GitDir, constants.Objects,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// inflateObjectFile reads and decompresses a stored object file.
func inflateObjectFile(t *testing.T, repoPath, hash string) []byte {
	t.Helper()

	compressedData, err := os.ReadFile(objectFilePath(repoPath, hash))
	require.NoError(t, err)

	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	require.NoError(t, err)
	defer reader.Close()

	var buffer bytes.Buffer
	_, err = buffer.ReadFrom(reader)
	require.NoError(t, err)
	return buffer.Bytes()
}

// writeRawObject deflates data and places it where hash would be stored.
func writeRawObject(t *testing.T, repoPath, hash string, data []byte, compress bool) {
	t.Helper()

	path := objectFilePath(repoPath, hash)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), constants.DirPerms))

	if compress {
		var buffer bytes.Buffer
		writer := zlib.NewWriter(&buffer)
		writer.Write(data)
		writer.Close()
		data = buffer.Bytes()
	}

	testutils.CreateTestFile(t, filepath.Dir(path), filepath.Base(path), data)
}
