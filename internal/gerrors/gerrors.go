// Package gerrors defines the failure kinds surfaced by the object store,
// the index reader and the ref resolver.
//
// Callers discriminate with errors.Is against the kind sentinels:
//
//	if errors.Is(err, gerrors.ErrCorruptIndex) { ... }
package gerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a repository failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: requested object id or ref does not exist.
	KindNotFound
	// KindCorruptIndex: checksum mismatch, bad signature or unsupported version.
	KindCorruptIndex
	// KindCorruptObject: stored bytes fail to inflate or fail header parsing.
	KindCorruptObject
	// KindStructural: index entry data does not match the available bytes.
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindCorruptIndex:
		return "corrupt index"
	case KindCorruptObject:
		return "corrupt object"
	case KindStructural:
		return "structural error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrCorruptIndex  = &Error{Kind: KindCorruptIndex}
	ErrCorruptObject = &Error{Kind: KindCorruptObject}
	ErrStructural    = &Error{Kind: KindStructural}
)

// Error carries a Kind plus the operation and a human-readable detail.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

// New returns an *Error of the given kind.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// Wrap returns an *Error of the given kind wrapping err.
func Wrap(kind Kind, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Detail
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same Kind, so sentinels compare by kind only.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindNotFound:
		return 2
	case KindCorruptIndex:
		return 3
	case KindCorruptObject:
		return 4
	case KindStructural:
		return 5
	default:
		return 1
	}
}
