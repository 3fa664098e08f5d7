package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType:
		return true
	default:
		return false
	}
}

// ParseObjectType converts a header or flag value into an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	ot := ObjectType(s)
	if !ot.IsValid() {
		return "", fmt.Errorf("invalid object type: %q", s)
	}
	return ot, nil
}

// ObjectHeader returns the "<type> <size>\0" prefix hashed and stored before content.
func ObjectHeader(objectType ObjectType, size int) string {
	return fmt.Sprintf("%s %d\x00", objectType, size)
}

// ComputeHash calculates the SHA-1 id for object content of the given type.
func ComputeHash(content []byte, objectType ObjectType) (string, error) {
	if !objectType.IsValid() {
		return "", fmt.Errorf("invalid object type: %s - hash not computed", objectType)
	}

	hasher := sha1.New()
	hasher.Write([]byte(ObjectHeader(objectType, len(content))))
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// IsHash reports whether s is a 40 character lowercase hex SHA-1.
func IsHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// BuildDirPath constructs os-agnostic display direcotry path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}
