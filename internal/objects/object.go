package objects

import "github.com/KostasZigo/gitcore/utils"

// Object represents any object that can be stored.
// Blobs, trees and commits all implement this interface.
type Object interface {
	// Type returns the object kind written in the header.
	Type() utils.ObjectType

	// Hash returns the SHA-1 hash of the object
	Hash() string

	// Content returns the payload without header.
	Content() []byte

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte
}
