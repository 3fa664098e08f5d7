package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"github.com/KostasZigo/gitcore/internal/objects"
	"github.com/KostasZigo/gitcore/testutils"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/agiledragon/gomonkey/v2"
)

func objectFilePath(repoPath, hash string) string {
	return filepath.Join(repoPath, constants.GitDir, constants.Objects, hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// TestHashObjectCommand_Success_NoStorage verifies hash computation without storage.
func TestHashObjectCommand_Success_NoStorage(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testFileContent := []byte("hello world\nHave a nice day")
	testutils.CreateTestFile(t, repoPath, testFileName, testFileContent)

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName)

	expectedHash, err := utils.ComputeHash(testFileContent, utils.BlobObjectType)
	if err != nil {
		t.Fatalf("Failed to compute hash: %v", err)
	}
	if expectedHash != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	if _, err := os.Stat(objectFilePath(repoPath, outputHash)); !errors.Is(err, fs.ErrNotExist) {
		t.Error("Object should not be created without -w flag")
	}
}

// TestHashObjectCommand_Success_WithStorage verifies hash computation with storage.
func TestHashObjectCommand_Success_WithStorage(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)

	testFileName := "test.txt"
	testFileContent := []byte("hello world\nHave a nice day")
	testutils.CreateTestFile(t, repoPath, testFileName, testFileContent)

	changeToRepoDir(t, repoPath)

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")

	expectedHash, err := utils.ComputeHash(testFileContent, utils.BlobObjectType)
	if err != nil {
		t.Fatalf("Failed to compute hash: %v", err)
	}
	if expectedHash != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	testutils.AssertFileExists(t, objectFilePath(repoPath, outputHash))

	store := objects.NewObjectStore(repoPath)
	blob, err := store.ReadBlob(expectedHash)
	if err != nil {
		t.Fatalf("Failed to read stored blob: %v", err)
	}
	if !bytes.Equal(blob.Content(), testFileContent) {
		t.Errorf("Stored blob content mismatch: expected %q, got %q", testFileContent, blob.Content())
	}
}

// TestHashObjectCommand_TreeType verifies -t tree stores the given bytes unchanged.
func TestHashObjectCommand_TreeType(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	entry, err := objects.NewTreeEntry(objects.ModeRegularFile, "hello.txt", "3b18e512dba79e4c8300dd08aeb37f8e728b8dad")
	if err != nil {
		t.Fatalf("Failed to create tree entry: %v", err)
	}
	tree, err := objects.NewTree([]objects.TreeEntry{*entry})
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	testutils.CreateTestFile(t, repoPath, "tree.bin", tree.Content())

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "-t", "tree", "tree.bin")
	if outputHash != tree.Hash() {
		t.Fatalf("Expected hash %s, got %s", tree.Hash(), outputHash)
	}

	objectType, content, err := objects.NewObjectStore(repoPath).Read(outputHash)
	if err != nil {
		t.Fatalf("Failed to read stored tree: %v", err)
	}
	if objectType != utils.TreeObjectType || !bytes.Equal(content, tree.Content()) {
		t.Errorf("Stored object mismatch: type %s, content %q", objectType, content)
	}
}

// TestHashObjectCommand_MalformedTree verifies non-blob payloads are validated.
func TestHashObjectCommand_MalformedTree(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)
	testutils.CreateTestFile(t, repoPath, "tree.bin", []byte("not a tree"))

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "-t", "tree", "tree.bin")
	if err == nil {
		t.Fatal("Expected error for malformed tree content")
	}
	if !errors.Is(err, gerrors.ErrCorruptObject) {
		t.Errorf("Expected corrupt object error, got: %v", err)
	}
}

// TestHashObjectCommand_UnsortedTree verifies trees not in canonical order are refused.
func TestHashObjectCommand_UnsortedTree(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	id := bytes.Repeat([]byte{0xab}, constants.HashByteLength)
	var payload []byte
	for _, name := range []string{"b.txt", "a.txt"} {
		payload = append(payload, "100644 "+name+"\x00"...)
		payload = append(payload, id...)
	}
	testutils.CreateTestFile(t, repoPath, "tree.bin", payload)

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "-t", "tree", "tree.bin")
	if !errors.Is(err, gerrors.ErrCorruptObject) {
		t.Fatalf("Expected corrupt object error for unsorted tree, got: %v", err)
	}
	if !strings.Contains(err.Error(), "canonical order") {
		t.Errorf("Expected error to mention canonical order, got: %v", err)
	}

	dirs, err := os.ReadDir(filepath.Join(repoPath, constants.GitDir, constants.Objects))
	if err != nil {
		t.Fatalf("Failed to list objects: %v", err)
	}
	if len(dirs) != 0 {
		t.Errorf("Expected nothing stored, found %d entries", len(dirs))
	}
}

// TestHashObjectCommand_InvalidType verifies the -t flag is validated.
func TestHashObjectCommand_InvalidType(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)
	testutils.CreateTestFile(t, repoPath, "a.txt", []byte("a"))

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-t", "tag", "a.txt")
	if err == nil || !strings.Contains(err.Error(), "invalid object type") {
		t.Fatalf("Expected invalid object type error, got: %v", err)
	}
}

// TestHashObject_FileNotFound verifies error for non-existent file.
func TestHashObject_FileNotFound(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	dummyFileName := "dummy.txt"

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, dummyFileName)
	if err == nil {
		t.Fatalf("%s command SHOULD fail", constants.HashObjectCmdName)
	}

	expectedErrorMessage := fmt.Sprintf("failed to read file %s", dummyFileName)
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_ArgumentCount verifies argument validation.
func TestHashObjectCommand_ArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
		got  int
	}{
		{"no arguments", nil, 0},
		{"too many arguments", []string{"a.txt", "b.txt"}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCommand(t, hashObjectCmd, append([]string{constants.HashObjectCmdName}, tc.args...)...)
			if err == nil {
				t.Fatal("Expected argument validation error")
			}

			expectedErrorMessage := fmt.Sprintf("%s command requires exactly 1 argument (filepath), received %d", constants.HashObjectCmdName, tc.got)
			if !strings.Contains(err.Error(), expectedErrorMessage) {
				t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
			}
		})
	}
}

// TestHashObjectCommand_FileNotInRepository verifies error when file outside repository.
func TestHashObjectCommand_FileNotInRepository(t *testing.T) {
	repoPath := t.TempDir()
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testutils.CreateTestFile(t, repoPath, testFileName, []byte("Pikachu I choose you !"))

	// Only storing needs a repository
	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")
	if err == nil {
		t.Fatal("Expected error when file is not inside a repository")
	}

	expectedErrorMessage := fmt.Sprintf("%s directory not found", constants.GitDir)
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
	if gerrors.ExitCode(err) != 2 {
		t.Errorf("Expected exit code 2, got %d", gerrors.ExitCode(err))
	}
}

// TestHashObjectCommand_StoreFailure verifies error handling when storage fails.
func TestHashObjectCommand_StoreFailure(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testutils.CreateTestFile(t, repoPath, testFileName, []byte("Charmander used Ember !"))

	mockError := errors.New("failed to write object to .git/objects")
	patches := gomonkey.ApplyMethod(&objects.ObjectStore{}, "Write",
		func(_ *objects.ObjectStore, _ utils.ObjectType, _ []byte) (string, error) {
			return "", mockError
		})
	defer patches.Reset()

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")
	if err == nil {
		t.Fatalf("Expected %s command to fail according to mocking", constants.HashObjectCmdName)
	}

	expectedErrorMessage := "failed to store object: " + mockError.Error()
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_NewBlobFromFileFailure verifies error handling when blob creation fails.
func TestHashObjectCommand_NewBlobFromFileFailure(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testutils.CreateTestFile(t, repoPath, testFileName, []byte("Charmander used Ember !"))

	mockError := errors.New("failed to create new blob from file")
	patches := gomonkey.ApplyFunc(objects.NewBlobFromFile,
		func(_ string) (*objects.Blob, error) {
			return nil, mockError
		})
	defer patches.Reset()

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")
	if err == nil {
		t.Fatalf("Expected %s command to fail according to mocking", constants.HashObjectCmdName)
	}
	if !strings.Contains(err.Error(), mockError.Error()) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", mockError.Error(), err.Error())
	}
}

// TestHashObjectCommand_MultipleFiles_SameContent verifies content-addressable storage.
func TestHashObjectCommand_MultipleFiles_SameContent(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	content := []byte("identical content\n")
	testutils.CreateTestFile(t, repoPath, "file1.txt", content)
	testutils.CreateTestFile(t, repoPath, "file2.txt", content)

	hash1 := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "file1.txt")
	hash2 := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "file2.txt")

	if hash1 != hash2 {
		t.Errorf("Identical content should produce same hash: %s != %s", hash1, hash2)
	}

	fanout, err := os.ReadDir(filepath.Dir(objectFilePath(repoPath, hash1)))
	if err != nil {
		t.Fatalf("Failed to read object directory: %v", err)
	}
	if len(fanout) != 1 {
		t.Errorf("Expected a single object file, found %d", len(fanout))
	}
}

// TestHashObjectCommand_EmptyFile verifies hash computation for empty file.
func TestHashObjectCommand_EmptyFile(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)
	testutils.CreateTestFile(t, repoPath, "empty.txt", []byte{})

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "empty.txt")

	if outputHash != "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391" {
		t.Errorf("Expected empty file hash e69de29bb2d1d6434b8b29ae775ad8c2e48c5391, got %s", outputHash)
	}
}

// TestHashObjectCommand_LargeFile verifies hash computation for large file.
func TestHashObjectCommand_LargeFile(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	changeToRepoDir(t, repoPath)

	largeContent := bytes.Repeat([]byte("A"), 1024*1024) // 1MB of 'A's
	testutils.CreateTestFile(t, repoPath, "large.bin", largeContent)

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "large.bin")

	expectedHash, err := utils.ComputeHash(largeContent, utils.BlobObjectType)
	if err != nil {
		t.Fatalf("Failed to compute hash: %v", err)
	}
	if expectedHash != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	testutils.AssertFileExists(t, objectFilePath(repoPath, outputHash))
}
