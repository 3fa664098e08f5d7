package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	CatFileCmdName    = "cat-file"
	LsFilesCmdName    = "ls-files"
	WriteTreeCmdName  = "write-tree"
	AddCmdName        = "add"
	CommitCmdName     = "commit"
	LogCmdName        = "log"
	UpdateRefCmdName  = "update-ref"
)

// Repository directory and file names define the metadata structure.
const (
	// GitDir is the repository metadata directory.
	GitDir = ".git"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// Index is the binary staging file.
	Index = "index"

	// ConfigFile holds repository-local settings.
	ConfigFile = "gogit.toml"

	// LockFile is the advisory lock taken by mutating commands.
	LockFile = "gogit.lock"
)

// Default repository values.
const (
	// DefaultBranch is the branch used when HEAD is absent or unconfigured.
	DefaultBranch = "master"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = "ref: " + HeadsRefPrefix

	// HeadsRefPrefix turns a branch name into its ref.
	HeadsRefPrefix = "refs/heads/"
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ObjectPerms marks stored objects read-only (r--r--r--).
	ObjectPerms os.FileMode = 0444
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Index file layout (version 2).
const (
	IndexSignature = "DIRC"
	IndexVersion   = 2

	// IndexHeaderLength covers signature, version and entry count.
	IndexHeaderLength = 12

	// IndexEntryFixedLength is ten 32-bit stat fields, the hash and the flags word.
	IndexEntryFixedLength = 62

	// IndexNameMask selects the path length bits of an entry's flags.
	IndexNameMask = 0x0fff
)

// Commit metadata prefixes.
const (
	CommitTreePrefix      = "tree "
	CommitParentPrefix    = "parent "
	CommitAuthorPrefix    = "author "
	CommitCommitterPrefix = "committer "
)

// Object format constants.
const (
	// NullByte separates header from content in Git objects.
	NullByte = '\x00'
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)
