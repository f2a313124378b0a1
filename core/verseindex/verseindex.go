// Package verseindex provides a flattened, ordered view of every verse
// in a corpus. The index backs text search and random verse selection
// and is built exactly once after a successful corpus load.
package verseindex

import (
	"math/rand"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
)

// Entry is one verse with its address and display metadata.
type Entry struct {
	// Address locates the verse in the corpus the index was built from.
	Address corpus.Address `json:"address"`

	// BookName is the display name of the containing book.
	BookName string `json:"book_name"`

	// Text is the verse text.
	Text string `json:"text"`
}

// Index is an immutable ordered sequence of entries in corpus traversal
// order (book, then chapter, then verse).
type Index struct {
	entries []Entry
	rng     *rand.Rand
}

// Option configures an Index.
type Option func(*Index)

// WithRand sets the random source used by RandomEntry. Tests use a
// seeded source for reproducible selection.
func WithRand(rng *rand.Rand) Option {
	return func(ix *Index) {
		ix.rng = rng
	}
}

// Build traverses the corpus once and returns the flattened index.
// Empty verse strings are indexed like any other verse so addresses
// stay dense.
func Build(c *corpus.Corpus, opts ...Option) *Index {
	ix := &Index{}
	for bi, b := range c.Books {
		for ci, ch := range b.Chapters {
			for vi, text := range ch {
				ix.entries = append(ix.entries, Entry{
					Address:  corpus.Address{Book: bi, Chapter: ci, Verse: vi},
					BookName: b.DisplayName,
					Text:     text,
				})
			}
		}
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// All returns the entries in traversal order. Callers must not modify
// the returned slice.
func (ix *Index) All() []Entry {
	return ix.entries
}

// Len returns the number of indexed verses.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// At returns the entry at position i in traversal order.
func (ix *Index) At(i int) Entry {
	return ix.entries[i]
}

// RandomEntry returns a uniformly selected entry. The second return is
// false when the index is empty (a corpus with zero verses).
func (ix *Index) RandomEntry() (Entry, bool) {
	if len(ix.entries) == 0 {
		return Entry{}, false
	}
	var n int
	if ix.rng != nil {
		n = ix.rng.Intn(len(ix.entries))
	} else {
		n = rand.Intn(len(ix.entries))
	}
	return ix.entries[n], true
}
