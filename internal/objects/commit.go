package objects

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KostasZigo/gitcore/internal/constants"
	"github.com/KostasZigo/gitcore/internal/gerrors"
	"github.com/KostasZigo/gitcore/utils"
)

// Author identifies who made a commit and when.
type Author struct {
	Name      string
	Email     string
	Timestamp time.Time
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// ParseAuthor parses an identity of the form "Name <email>".
func ParseAuthor(identity string) (Author, error) {
	identity = strings.TrimSpace(identity)
	open := strings.LastIndexByte(identity, '<')
	if open < 0 || !strings.HasSuffix(identity, ">") {
		return Author{}, fmt.Errorf("invalid author %q: expected \"Name <email>\"", identity)
	}
	name := strings.TrimSpace(identity[:open])
	email := identity[open+1 : len(identity)-1]
	if name == "" || email == "" || strings.ContainsAny(email, "<>\n") || strings.ContainsAny(name, "<>\n") {
		return Author{}, fmt.Errorf("invalid author %q: expected \"Name <email>\"", identity)
	}
	return Author{Name: name, Email: email}, nil
}

// Commit represents a snapshot of the repository.
type Commit struct {
	hash       string
	treeHash   string
	parentHash string
	author     Author
	committer  Author
	message    string
	raw        []byte // payload as stored, nil for commits built with NewCommit
}

func NewCommit(treeHash, parentHash, message string, author Author) (*Commit, error) {
	content := buildCommitContent(treeHash, parentHash, message, author, author)
	hash, err := utils.ComputeHash(content, utils.CommitObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for commit: %w", err)
	}

	return &Commit{
		hash:       hash,
		treeHash:   treeHash,
		parentHash: parentHash,
		author:     author,
		committer:  author,
		message:    message,
	}, nil
}

func buildCommitContent(treeHash, parentHash, message string, author, committer Author) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s%s\n", constants.CommitTreePrefix, treeHash)

	if parentHash != "" {
		fmt.Fprintf(&buf, "%s%s\n", constants.CommitParentPrefix, parentHash)
	}

	fmt.Fprintf(&buf, "%s%s\n", constants.CommitAuthorPrefix, formatSignature(author))
	fmt.Fprintf(&buf, "%s%s\n", constants.CommitCommitterPrefix, formatSignature(committer))

	// Blank line before message
	buf.WriteByte('\n')

	buf.WriteString(message)
	if !strings.HasSuffix(message, "\n") {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// formatSignature renders "Name <email> <unix-seconds> <±HHMM>".
func formatSignature(a Author) string {
	_, offset := a.Timestamp.Zone()
	return fmt.Sprintf("%s %d %s", a.String(), a.Timestamp.Unix(), FormatOffset(offset))
}

// FormatOffset renders a UTC offset in seconds as ±HHMM, "+" east of UTC.
func FormatOffset(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / constants.SecondsPerHour
	minutes := (offset % constants.SecondsPerHour) / constants.SecondsPerMinute
	return fmt.Sprintf("%c%02d%02d", sign, hours, minutes)
}

// ParseOffset is the inverse of FormatOffset.
func ParseOffset(tz string) (int, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return 0, fmt.Errorf("invalid timezone %q", tz)
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	offset := hours*constants.SecondsPerHour + minutes*constants.SecondsPerMinute
	if tz[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

func parseSignature(line string) (Author, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Author{}, fmt.Errorf("invalid signature %q", line)
	}
	seconds, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
	if err != nil {
		return Author{}, fmt.Errorf("invalid signature timestamp %q: %w", line, err)
	}
	offset, err := ParseOffset(fields[len(fields)-1])
	if err != nil {
		return Author{}, err
	}
	identity := strings.Join(fields[:len(fields)-2], " ")
	author, err := ParseAuthor(identity)
	if err != nil {
		return Author{}, err
	}
	author.Timestamp = time.Unix(seconds, 0).In(time.FixedZone("", offset))
	return author, nil
}

// ParseCommit decodes a commit payload read from the store.
// Only the first parent line is kept. Content returns the payload unchanged.
func ParseCommit(content []byte) (*Commit, error) {
	headers, message, found := strings.Cut(string(content), "\n\n")
	if !found {
		return nil, gerrors.New(gerrors.KindCorruptObject, "parse commit", "missing blank line before message")
	}

	c := &Commit{
		message: strings.TrimSuffix(message, "\n"),
		raw:     bytes.Clone(content),
	}
	var sawAuthor, sawCommitter bool
	for _, line := range strings.Split(headers, "\n") {
		var err error
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			c.treeHash = strings.TrimPrefix(line, constants.CommitTreePrefix)
		case strings.HasPrefix(line, constants.CommitParentPrefix):
			if c.parentHash == "" {
				c.parentHash = strings.TrimPrefix(line, constants.CommitParentPrefix)
			}
		case strings.HasPrefix(line, constants.CommitAuthorPrefix):
			c.author, err = parseSignature(strings.TrimPrefix(line, constants.CommitAuthorPrefix))
			sawAuthor = true
		case strings.HasPrefix(line, constants.CommitCommitterPrefix):
			c.committer, err = parseSignature(strings.TrimPrefix(line, constants.CommitCommitterPrefix))
			sawCommitter = true
		}
		if err != nil {
			return nil, gerrors.Wrap(gerrors.KindCorruptObject, "parse commit", "invalid signature", err)
		}
	}
	if c.treeHash == "" || !sawAuthor {
		return nil, gerrors.New(gerrors.KindCorruptObject, "parse commit", "missing tree or author")
	}
	if !sawCommitter {
		c.committer = c.author
	}

	hash, err := utils.ComputeHash(content, utils.CommitObjectType)
	if err != nil {
		return nil, err
	}
	c.hash = hash
	return c, nil
}

func (c *Commit) Type() utils.ObjectType {
	return utils.CommitObjectType
}

func (c *Commit) Hash() string {
	return c.hash
}

func (c *Commit) TreeHash() string {
	return c.treeHash
}

func (c *Commit) ParentHash() string {
	return c.parentHash
}

func (c *Commit) Author() Author {
	return c.author
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Content() []byte {
	if c.raw != nil {
		return c.raw
	}
	return buildCommitContent(c.treeHash, c.parentHash, c.message, c.author, c.committer)
}

func (c *Commit) Size() int {
	return len(c.Content())
}

func (c *Commit) Data() []byte {
	content := c.Content()
	return append([]byte(utils.ObjectHeader(utils.CommitObjectType, len(content))), content...)
}

func (c *Commit) IsInitialCommit() bool {
	return c.parentHash == ""
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parent: %s, author: %s, message: %q}",
		c.hash, c.treeHash, c.parentHash, c.author.String(), c.message)
}
