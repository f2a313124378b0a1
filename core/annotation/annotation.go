// Package annotation implements the user annotation store: notes,
// bookmarks, and favorites attached to individual verse addresses, with
// a full-blob persistence round-trip after every mutation.
package annotation

import (
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
)

// Kind is the annotation category.
type Kind string

// Annotation kinds.
const (
	KindNote     Kind = "note"
	KindBookmark Kind = "bookmark"
	KindFavorite Kind = "favorite"
)

// validKinds is the set of valid annotation kinds.
var validKinds = map[Kind]bool{
	KindNote:     true,
	KindBookmark: true,
	KindFavorite: true,
}

// IsValid returns true if the kind is valid.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Kinds returns all annotation kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindNote, KindBookmark, KindFavorite}
}

// Annotation is a single user annotation. Logical identity for
// deduplication is the (Kind, Address) pair, not the opaque ID: two
// values with different IDs but the same pair collapse on upsert.
type Annotation struct {
	// ID is an opaque stable identifier assigned at creation, never reused.
	ID string `json:"id"`

	// Kind is the annotation category.
	Kind Kind `json:"kind"`

	// Address locates the annotated verse in the corpus.
	Address corpus.Address `json:"address"`

	// BookName is the book display name, denormalized at creation so
	// annotation display survives corpus changes between sessions.
	BookName string `json:"book_name"`

	// SnapshotText is the verse text at creation time, kept as the
	// display fallback even for notes.
	SnapshotText string `json:"snapshot_text"`

	// CustomText is the user-authored body; meaningful only for notes.
	CustomText string `json:"custom_text,omitempty"`

	// LastModified is the time of creation or last edit.
	LastModified time.Time `json:"last_modified"`
}

// Payload carries the denormalized display fields and optional note
// body for an upsert.
type Payload struct {
	BookName     string
	SnapshotText string

	// CustomText, when non-nil, replaces the note body.
	CustomText *string
}

// newID generates a fresh annotation identifier.
func newID() string {
	return uuid.NewString()
}
