package index

import (
	"bytes"
	"cmp"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/KostasZigo/gitcore/internal/constants"
	"go.uber.org/multierr"
)

// NewEntry builds an entry for the file at path (relative to the repository
// root, slash separated) from its stat data and blob id.
func NewEntry(path string, info fs.FileInfo, hash string) (Entry, error) {
	raw, err := hex.DecodeString(hash)
	if err != nil || len(raw) != constants.HashByteLength {
		return Entry{}, fmt.Errorf("invalid blob id %q for %s", hash, path)
	}

	e := Entry{
		MtimeSeconds: uint32(info.ModTime().Unix()),
		MtimeNanos:   uint32(info.ModTime().Nanosecond()),
		Mode:         normalizeMode(info.Mode()),
		Size:         uint32(info.Size()),
		Path:         filepath.ToSlash(path),
	}
	copy(e.Hash[:], raw)

	// ctime, dev, ino, uid and gid are only available on some platforms
	e.CtimeSeconds, e.CtimeNanos = e.MtimeSeconds, e.MtimeNanos
	fillStat(&e, info)

	return e, nil
}

func normalizeMode(mode fs.FileMode) uint32 {
	switch {
	case mode&fs.ModeSymlink != 0:
		return 0o120000
	case mode.Perm()&0o100 != 0:
		return 0o100755
	default:
		return 0o100644
	}
}

// Encode serializes entries sorted by path bytes, including the checksum trailer.
func Encode(entries []Entry) []byte {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return encode(sorted)
}

// encode serializes entries in the given order.
func encode(sorted []Entry) []byte {
	var buf bytes.Buffer
	buf.WriteString(constants.IndexSignature)
	binary.Write(&buf, binary.BigEndian, uint32(constants.IndexVersion))
	binary.Write(&buf, binary.BigEndian, uint32(len(sorted)))

	for _, e := range sorted {
		start := buf.Len()
		for _, field := range []uint32{
			e.CtimeSeconds, e.CtimeNanos, e.MtimeSeconds, e.MtimeNanos,
			e.Dev, e.Ino, e.Mode, e.UID, e.GID, e.Size,
		} {
			binary.Write(&buf, binary.BigEndian, field)
		}
		buf.Write(e.Hash[:])

		nameLength := min(len(e.Path), constants.IndexNameMask)
		flags := e.Flags&^constants.IndexNameMask | uint16(nameLength)
		binary.Write(&buf, binary.BigEndian, flags)
		buf.WriteString(e.Path)

		length := paddedLength(len(e.Path))
		buf.Write(make([]byte, length-(buf.Len()-start)))
	}

	digest := sha1.Sum(buf.Bytes())
	buf.Write(digest[:])
	return buf.Bytes()
}

// Write replaces the index of the repository at repoPath.
// Callers are responsible for serializing writers.
func Write(repoPath string, entries []Entry) (retErr error) {
	data := Encode(entries)
	indexPath := Path(repoPath)

	tmp, err := os.CreateTemp(filepath.Dir(indexPath), ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create index temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write index: %w", multierr.Append(err, tmp.Close()))
	}
	if err := tmp.Chmod(constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write index: %w", multierr.Append(err, tmp.Close()))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	if err := os.Rename(tmpName, indexPath); err != nil {
		return fmt.Errorf("failed to replace index: %w", err)
	}

	slog.Debug("Wrote index", "path", indexPath, "entries", len(entries))
	return nil
}

// Upsert returns entries with e added, replacing any entry with the same path.
func Upsert(entries []Entry, e Entry) []Entry {
	for i := range entries {
		if entries[i].Path == e.Path {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}
