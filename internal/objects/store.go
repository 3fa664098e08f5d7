package objects

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"github.com/KostasZigo/gitcore/utils"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
)

// ObjectStore reads and writes zlib-compressed objects under
// .git/objects/<first 2 chars>/<remaining 38 chars>.
type ObjectStore struct {
	repoPath string // Path to repository root
	level    int    // zlib compression level
}

// StoreOption configures an ObjectStore.
type StoreOption func(*ObjectStore)

// WithCompressionLevel overrides the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(store *ObjectStore) {
		store.level = level
	}
}

func NewObjectStore(repoPath string, options ...StoreOption) *ObjectStore {
	store := &ObjectStore{
		repoPath: repoPath,
		level:    zlib.DefaultCompression,
	}
	for _, option := range options {
		option(store)
	}
	return store
}

func (store *ObjectStore) objectDir(hash string) string {
	return filepath.Join(store.repoPath, constants.GitDir, constants.Objects, hash[:constants.HashDirPrefixLength])
}

func (store *ObjectStore) objectPath(hash string) string {
	return filepath.Join(store.objectDir(hash), hash[constants.HashDirPrefixLength:])
}

// HashObject computes the id Write would return without touching the filesystem.
func (store *ObjectStore) HashObject(objectType utils.ObjectType, content []byte) (string, error) {
	return utils.ComputeHash(content, objectType)
}

// Store saves any Object. Returns nil if the object already exists.
func (store *ObjectStore) Store(object Object) error {
	_, err := store.Write(object.Type(), object.Content())
	return err
}

// Write stores content as an object of the given type and returns its id.
// An object that already exists is left untouched.
func (store *ObjectStore) Write(objectType utils.ObjectType, content []byte) (string, error) {
	hash, err := utils.ComputeHash(content, objectType)
	if err != nil {
		return "", err
	}

	objectFile := store.objectPath(hash)

	_, err = os.Stat(objectFile)
	if err == nil {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return hash, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to check object %s: %w", hash, err)
	}

	objectDir := store.objectDir(hash)
	if err := os.MkdirAll(objectDir, constants.DirPerms); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	data := append([]byte(utils.ObjectHeader(objectType, len(content))), content...)
	compressedData, err := store.compress(data)
	if err != nil {
		return "", fmt.Errorf("failed to compress object: %w", err)
	}

	if err := writeFileAtomic(objectDir, objectFile, compressedData); err != nil {
		return "", fmt.Errorf("failed to write object file: %w", err)
	}

	slog.Debug("Stored object",
		"hash", hash,
		"type", objectType,
		"size", len(content))
	return hash, nil
}

// writeFileAtomic writes into a temp file in dir and renames it over path.
// Concurrent writers of the same object race benignly on identical bytes.
func writeFileAtomic(dir, path string, data []byte) (retErr error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Chmod(constants.ObjectPerms); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (store *ObjectStore) compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buffer, store.level)
	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(data); err != nil {
		return nil, multierr.Append(err, writer.Close())
	}

	// Close flushes any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Read loads an object by id and returns its type and content.
func (store *ObjectStore) Read(hash string) (utils.ObjectType, []byte, error) {
	if !utils.IsHash(hash) {
		return "", nil, gerrors.New(gerrors.KindNotFound, "read object", fmt.Sprintf("invalid object id %q", hash))
	}

	compressedData, err := os.ReadFile(store.objectPath(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, gerrors.Wrap(gerrors.KindNotFound, "read object", "object "+hash+" not found", err)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read object file %s: %w", hash, err)
	}

	data, err := decompress(compressedData)
	if err != nil {
		return "", nil, gerrors.Wrap(gerrors.KindCorruptObject, "read object", "failed to decompress "+hash, err)
	}

	objectType, content, err := parseObject(data)
	if err != nil {
		return "", nil, gerrors.Wrap(gerrors.KindCorruptObject, "read object", "invalid object "+hash, err)
	}

	actual, _ := utils.ComputeHash(content, objectType)
	if actual != hash {
		return "", nil, gerrors.New(gerrors.KindCorruptObject, "read object",
			fmt.Sprintf("hash mismatch: expected %s, got %s", hash, actual))
	}

	return objectType, content, nil
}

func decompress(compressedData []byte) (_ []byte, retErr error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = multierr.Append(retErr, reader.Close())
	}()

	var buffer bytes.Buffer
	if _, err := buffer.ReadFrom(reader); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// parseObject splits "<type> <size>\0<content>" and validates the header.
func parseObject(data []byte) (utils.ObjectType, []byte, error) {
	nullByteIndex := bytes.IndexByte(data, constants.NullByte)
	if nullByteIndex == -1 {
		return "", nil, errors.New("no null byte found")
	}

	header := string(data[:nullByteIndex])
	content := data[nullByteIndex+1:]

	typeName, sizeText, found := bytes.Cut([]byte(header), []byte(" "))
	if !found {
		return "", nil, fmt.Errorf("malformed header %q", header)
	}
	objectType, err := utils.ParseObjectType(string(typeName))
	if err != nil {
		return "", nil, err
	}
	size, err := strconv.Atoi(string(sizeText))
	if err != nil || size < 0 {
		return "", nil, fmt.Errorf("malformed size in header %q", header)
	}
	if size != len(content) {
		return "", nil, fmt.Errorf("size mismatch: header %d, content %d", size, len(content))
	}

	return objectType, content, nil
}

// ReadBlob reads an object and checks it is a blob.
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	content, err := store.readTyped(hash, utils.BlobObjectType)
	if err != nil {
		return nil, err
	}
	return NewBlob(content), nil
}

// ReadTree reads and parses a tree object.
func (store *ObjectStore) ReadTree(hash string) (*Tree, error) {
	content, err := store.readTyped(hash, utils.TreeObjectType)
	if err != nil {
		return nil, err
	}
	return ParseTree(content)
}

// ReadCommit reads and parses a commit object.
func (store *ObjectStore) ReadCommit(hash string) (*Commit, error) {
	content, err := store.readTyped(hash, utils.CommitObjectType)
	if err != nil {
		return nil, err
	}
	return ParseCommit(content)
}

func (store *ObjectStore) readTyped(hash string, want utils.ObjectType) ([]byte, error) {
	objectType, content, err := store.Read(hash)
	if err != nil {
		return nil, err
	}
	if objectType != want {
		return nil, gerrors.New(gerrors.KindCorruptObject, "read object",
			fmt.Sprintf("object %s: type mismatch: got %q, want %q", hash, objectType, want))
	}
	return content, nil
}

// Exists checks if an object exists in storage
func (store *ObjectStore) Exists(hash string) bool {
	if !utils.IsHash(hash) {
		return false
	}
	_, err := os.Stat(store.objectPath(hash))
	return err == nil
}
