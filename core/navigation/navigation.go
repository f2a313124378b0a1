// Package navigation translates a verse address into the chain of
// hierarchy selections (book, chapter, verse) needed to reach it in the
// browsing UI. Deep-links from search results, annotation lists, and
// the playback position all resolve through here.
package navigation

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
)

// Level identifies one step of the browsing hierarchy.
type Level string

// Hierarchy levels, outermost first.
const (
	LevelBook    Level = "book"
	LevelChapter Level = "chapter"
	LevelVerse   Level = "verse"
)

// Selection is one step in the resolved chain: select the item at Index
// within the current level. Label carries the display text for the step
// (book name, chapter number, verse number).
type Selection struct {
	Level Level  `json:"level"`
	Index int    `json:"index"`
	Label string `json:"label"`
}

// ResolutionError is returned when an address cannot be resolved
// against the current corpus. Addresses arrive from stale persisted
// annotations or other sessions, so failure here is expected and the
// caller navigates to nothing rather than crashing.
type ResolutionError struct {
	Address corpus.Address
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("address %s does not resolve against the loaded corpus", e.Address)
}

// Resolve returns the selection chain for the address: book, then
// chapter, then verse. The address is validated against the live corpus
// first; out-of-bounds coordinates yield a *ResolutionError.
func Resolve(addr corpus.Address, c *corpus.Corpus) ([]Selection, error) {
	if !addr.Valid(c) {
		return nil, &ResolutionError{Address: addr}
	}

	book := c.Books[addr.Book]
	return []Selection{
		{Level: LevelBook, Index: addr.Book, Label: book.DisplayName},
		{Level: LevelChapter, Index: addr.Chapter, Label: fmt.Sprintf("Chapter %d", addr.Chapter+1)},
		{Level: LevelVerse, Index: addr.Verse, Label: fmt.Sprintf("Verse %d", addr.Verse+1)},
	}, nil
}

// Flatten converts a selection chain back into an address. It is the
// inverse of Resolve and exists mainly so callers can assert the
// round-trip.
func Flatten(chain []Selection) (corpus.Address, bool) {
	if len(chain) != 3 || chain[0].Level != LevelBook || chain[1].Level != LevelChapter || chain[2].Level != LevelVerse {
		return corpus.Address{}, false
	}
	return corpus.Address{
		Book:    chain[0].Index,
		Chapter: chain[1].Index,
		Verse:   chain[2].Index,
	}, true
}
