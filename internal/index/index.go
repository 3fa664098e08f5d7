// Package index reads and writes the binary staging file (.git/index).
//
// Only version 2 of the format is supported:
//
//	header:  "DIRC" | version (4 bytes) | entry count (4 bytes)
//	entries: ctime s/ns, mtime s/ns, dev, ino, mode, uid, gid, size (4 bytes each),
//	         SHA-1 (20 bytes), flags (2 bytes), path, 1-8 NUL bytes so that the
//	         entry length is a multiple of 8
//	trailer: SHA-1 of everything before it
//
// All integers are big-endian.
package index

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
)

const readOp = "read index"

// Entry is one staged file.
type Entry struct {
	CtimeSeconds uint32
	CtimeNanos   uint32
	MtimeSeconds uint32
	MtimeNanos   uint32
	Dev          uint32
	Ino          uint32
	Mode         uint32
	UID          uint32
	GID          uint32
	Size         uint32
	Hash         [constants.HashByteLength]byte
	Flags        uint16
	Path         string
}

// HashHex returns the blob id of the entry.
func (e Entry) HashHex() string {
	return hex.EncodeToString(e.Hash[:])
}

// IsExecutable reports whether the owner execute bit is set on a regular file.
func (e Entry) IsExecutable() bool {
	return e.Mode&0o170000 == 0o100000 && e.Mode&0o100 != 0
}

// IsSymlink reports whether the entry records a symbolic link.
func (e Entry) IsSymlink() bool {
	return e.Mode&0o170000 == 0o120000
}

// Path returns the location of the index file for a repository root.
func Path(repoPath string) string {
	return filepath.Join(repoPath, constants.GitDir, constants.Index)
}

// Read parses the index of the repository at repoPath.
// A missing index file is an empty repository and yields no entries.
// Entries are returned in on-disk order.
func Read(repoPath string) ([]Entry, error) {
	indexPath := Path(repoPath)

	data, err := os.ReadFile(indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No index file, treating as empty", "path", indexPath)
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	entries, err := Decode(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Read index", "path", indexPath, "entries", len(entries))
	return entries, nil
}

// Decode validates and parses raw index bytes.
func Decode(data []byte) ([]Entry, error) {
	if len(data) < constants.HashByteLength {
		return nil, gerrors.New(gerrors.KindStructural, readOp,
			fmt.Sprintf("index too short: %d bytes", len(data)))
	}

	body := data[:len(data)-constants.HashByteLength]
	checksum := data[len(data)-constants.HashByteLength:]

	digest := sha1.Sum(body)
	if !bytes.Equal(digest[:], checksum) {
		return nil, gerrors.New(gerrors.KindCorruptIndex, readOp, "invalid index checksum")
	}

	if len(body) < constants.IndexHeaderLength {
		return nil, gerrors.New(gerrors.KindStructural, readOp,
			fmt.Sprintf("index header truncated: %d bytes", len(body)))
	}

	if string(body[:4]) != constants.IndexSignature {
		return nil, gerrors.New(gerrors.KindCorruptIndex, readOp, "invalid index signature")
	}

	version := binary.BigEndian.Uint32(body[4:8])
	if version != constants.IndexVersion {
		return nil, gerrors.New(gerrors.KindCorruptIndex, readOp,
			fmt.Sprintf("unknown index version %d", version))
	}

	count := binary.BigEndian.Uint32(body[8:12])
	entries := make([]Entry, 0, min(int(count), len(body)/constants.IndexEntryFixedLength))

	offset := constants.IndexHeaderLength
	for i := uint32(0); i < count; i++ {
		entry, length, err := decodeEntry(body[offset:])
		if err != nil {
			return nil, gerrors.Wrap(gerrors.KindStructural, readOp,
				fmt.Sprintf("entry %d of %d", i+1, count), err)
		}
		entries = append(entries, entry)
		offset += length
	}

	return entries, nil
}

// decodeEntry parses one entry at the start of data and returns its padded length.
func decodeEntry(data []byte) (Entry, int, error) {
	if len(data) < constants.IndexEntryFixedLength {
		return Entry{}, 0, fmt.Errorf("need %d bytes, have %d", constants.IndexEntryFixedLength, len(data))
	}

	var e Entry
	fields := []*uint32{
		&e.CtimeSeconds, &e.CtimeNanos, &e.MtimeSeconds, &e.MtimeNanos,
		&e.Dev, &e.Ino, &e.Mode, &e.UID, &e.GID, &e.Size,
	}
	for i, field := range fields {
		*field = binary.BigEndian.Uint32(data[i*4:])
	}
	copy(e.Hash[:], data[40:60])
	e.Flags = binary.BigEndian.Uint16(data[60:62])

	nameStart := constants.IndexEntryFixedLength
	nameLength := int(e.Flags & constants.IndexNameMask)
	if nameLength == constants.IndexNameMask {
		// the length did not fit in 12 bits; the path runs to the first NUL
		nul := bytes.IndexByte(data[nameStart:], constants.NullByte)
		if nul < 0 {
			return Entry{}, 0, errors.New("unterminated long path")
		}
		nameLength = nul
	}

	length := paddedLength(nameLength)
	if len(data) < length {
		return Entry{}, 0, fmt.Errorf("need %d bytes, have %d", length, len(data))
	}
	for _, b := range data[nameStart+nameLength : length] {
		if b != constants.NullByte {
			return Entry{}, 0, errors.New("non-NUL padding after path")
		}
	}

	e.Path = string(data[nameStart : nameStart+nameLength])
	return e, length, nil
}

// paddedLength is the on-disk size of an entry whose path is nameLength bytes:
// the fixed fields plus path plus 1-8 NULs, rounded to a multiple of 8.
func paddedLength(nameLength int) int {
	return (constants.IndexEntryFixedLength + nameLength + 8) &^ 7
}
