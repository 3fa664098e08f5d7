package objects

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"github.com/KostasZigo/gitcore/utils"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "40000"  // Directory (tree)
	ModeSubmodule   FileMode = "160000" // Git submodule

	paddedDirectoryMode FileMode = "040000"
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeSymlink, ModeDirectory, ModeSubmodule:
		return true
	default:
		return false
	}
}

// ModeFromIndex maps the 32-bit mode of an index entry to a tree entry mode.
// Any regular file with an owner execute bit becomes 100755.
func ModeFromIndex(mode uint32) FileMode {
	switch mode & 0o170000 {
	case 0o120000:
		return ModeSymlink
	case 0o160000:
		return ModeSubmodule
	case 0o040000:
		return ModeDirectory
	}
	if mode&0o100 != 0 {
		return ModeExecutable
	}
	return ModeRegularFile
}

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	mode FileMode
	name string
	hash string // hex id of the blob or subtree
}

func NewTreeEntry(mode FileMode, name string, hash string) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid file mode: %s", mode)
	}
	if name == "" || strings.ContainsAny(name, "/\x00") {
		return nil, fmt.Errorf("invalid tree entry name: %q", name)
	}
	if !utils.IsHash(hash) {
		return nil, fmt.Errorf("invalid tree entry hash for %s: %q", name, hash)
	}
	return &TreeEntry{
		mode: mode,
		name: name,
		hash: hash,
	}, nil
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) Hash() string {
	return e.hash
}

func (e *TreeEntry) IsDirectory() bool {
	return e.mode == ModeDirectory
}

func (e *TreeEntry) IsExecutable() bool {
	return e.mode == ModeExecutable
}

// Tree represents a directory listing of blobs and subtrees.
type Tree struct {
	entries []TreeEntry
	hash    string
	raw     []byte // payload as stored, nil for trees built with NewTree
}

// NewTree creates a tree object from the list of Tree Entries.
// Entries are copied and sorted, so the hash does not depend on input order.
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	entries := make([]TreeEntry, len(treeEntries))
	copy(entries, treeEntries)

	slices.SortStableFunc(entries, compareTreeEntries)

	for i := 1; i < len(entries); i++ {
		if entries[i].name == entries[i-1].name {
			return nil, fmt.Errorf("duplicate tree entry: %s", entries[i].name)
		}
	}

	hash, err := utils.ComputeHash(buildTreeContent(entries), utils.TreeObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for tree: %w", err)
	}

	return &Tree{
		entries: entries,
		hash:    hash,
	}, nil
}

// compareTreeEntries orders entries by name in byte order.
// Directory names compare as if they had a trailing "/".
func compareTreeEntries(a, b TreeEntry) int {
	return strings.Compare(getSortableName(a), getSortableName(b))
}

func getSortableName(entry TreeEntry) string {
	if entry.IsDirectory() {
		return entry.Name() + "/"
	}
	return entry.Name()
}

// buildTreeContent serializes entries as
// <mode> <name>\0<20-byte binary SHA>, ex:
//
//	100644 README.md\0[binary SHA for README blob]
//	40000 src\0[binary SHA for src/ tree]
func buildTreeContent(entries []TreeEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		buf.WriteString(string(entry.Mode()))
		buf.WriteByte(' ')
		buf.WriteString(entry.Name())
		buf.WriteByte(constants.NullByte)

		// hashes are validated by NewTreeEntry
		hashBytes, _ := hex.DecodeString(entry.Hash())
		buf.Write(hashBytes)
	}

	return buf.Bytes()
}

// ParseTree decodes a tree payload read from the store.
// The payload is kept as is, so Hash and Content match the stored object
// even when its entries are not in canonical order.
func ParseTree(content []byte) (*Tree, error) {
	var entries []TreeEntry
	rest := content
	for len(rest) > 0 {
		space := bytes.IndexByte(rest, ' ')
		if space < 0 {
			return nil, gerrors.New(gerrors.KindCorruptObject, "parse tree", "missing mode separator")
		}
		nul := bytes.IndexByte(rest[space+1:], constants.NullByte)
		if nul < 0 {
			return nil, gerrors.New(gerrors.KindCorruptObject, "parse tree", "missing name terminator")
		}
		nameEnd := space + 1 + nul
		if len(rest) < nameEnd+1+constants.HashByteLength {
			return nil, gerrors.New(gerrors.KindCorruptObject, "parse tree", "truncated entry hash")
		}

		mode := FileMode(rest[:space])
		// some writers pad directory modes to six digits
		if mode == paddedDirectoryMode {
			mode = ModeDirectory
		}
		name := string(rest[space+1 : nameEnd])
		hash := hex.EncodeToString(rest[nameEnd+1 : nameEnd+1+constants.HashByteLength])

		entry, err := NewTreeEntry(mode, name, hash)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.KindCorruptObject, "parse tree", "invalid entry", err)
		}
		entries = append(entries, *entry)
		rest = rest[nameEnd+1+constants.HashByteLength:]
	}

	hash, err := utils.ComputeHash(content, utils.TreeObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for tree: %w", err)
	}

	return &Tree{
		entries: entries,
		hash:    hash,
		raw:     bytes.Clone(content),
	}, nil
}

// Validate reports whether the tree is in the form NewTree produces:
// entries strictly ordered with no duplicates and unpadded modes.
func (t *Tree) Validate() error {
	canonical, err := NewTree(t.entries)
	if err != nil {
		return gerrors.Wrap(gerrors.KindCorruptObject, "validate tree", "invalid tree", err)
	}
	if !bytes.Equal(canonical.Content(), t.Content()) {
		return gerrors.New(gerrors.KindCorruptObject, "validate tree", "entries not in canonical order")
	}
	return nil
}

func (t *Tree) Type() utils.ObjectType {
	return utils.TreeObjectType
}

// Hash returns the SHA-1 hash of the tree
func (t *Tree) Hash() string {
	return t.hash
}

// Entries returns all tree entries
func (t *Tree) Entries() []TreeEntry {
	return t.entries
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(t.Content())
}

// Content returns the raw tree content
func (t *Tree) Content() []byte {
	if t.raw != nil {
		return t.raw
	}
	return buildTreeContent(t.entries)
}

func (t *Tree) Data() []byte {
	content := t.Content()
	return append([]byte(utils.ObjectHeader(utils.TreeObjectType, len(content))), content...)
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.hash, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	for i := range t.entries {
		if t.entries[i].Name() == name {
			return &t.entries[i], true
		}
	}
	return nil, false
}
