// Package corpus defines the immutable book/chapter/verse text collection
// and its loader. A corpus is loaded once at session start and never
// mutated afterward; every other component addresses into it by
// zero-based (book, chapter, verse) coordinates.
package corpus

import "fmt"

// Book is a single book within the corpus.
type Book struct {
	// ID is the stable short book code (e.g., "Gen", "Matt", "1John").
	ID string `json:"id"`

	// DisplayName is the human-readable title (e.g., "Genesis").
	DisplayName string `json:"display_name"`

	// Chapters holds the verse text, one string per verse. Empty strings
	// mark verses missing from the source and are preserved as-is.
	Chapters [][]string `json:"chapters"`
}

// ChapterCount returns the number of chapters in the book.
func (b *Book) ChapterCount() int {
	return len(b.Chapters)
}

// VerseCount returns the number of verses in the given chapter, or 0 if
// the chapter index is out of range.
func (b *Book) VerseCount(chapter int) int {
	if chapter < 0 || chapter >= len(b.Chapters) {
		return 0
	}
	return len(b.Chapters[chapter])
}

// Corpus is the top-level container for the loaded text collection.
type Corpus struct {
	// Title is the human-readable corpus title, when the source carries one.
	Title string `json:"title,omitempty"`

	// Books contains all books in canonical order.
	Books []*Book `json:"books"`

	// SourceHash is the BLAKE3 hash of the raw source document.
	SourceHash string `json:"source_hash,omitempty"`

	// SourcePath is the path the corpus was loaded from.
	SourcePath string `json:"source_path,omitempty"`
}

// BookCount returns the number of books in the corpus.
func (c *Corpus) BookCount() int {
	return len(c.Books)
}

// VerseTotal returns the total number of verses across all books.
func (c *Corpus) VerseTotal() int {
	total := 0
	for _, b := range c.Books {
		for _, ch := range b.Chapters {
			total += len(ch)
		}
	}
	return total
}

// BookByID returns the book with the given ID and its index, or nil and -1.
func (c *Corpus) BookByID(id string) (*Book, int) {
	for i, b := range c.Books {
		if b.ID == id {
			return b, i
		}
	}
	return nil, -1
}

// Address is a zero-based (book, chapter, verse) coordinate into a corpus.
// An address is only meaningful relative to the corpus it was built
// against; callers must validate with Valid before dereferencing.
type Address struct {
	Book    int `json:"book"`
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// String returns the coordinate in "book/chapter/verse" form.
func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Book, a.Chapter, a.Verse)
}

// Valid reports whether the address is in bounds for the corpus.
func (a Address) Valid(c *Corpus) bool {
	if c == nil || a.Book < 0 || a.Book >= len(c.Books) {
		return false
	}
	b := c.Books[a.Book]
	if a.Chapter < 0 || a.Chapter >= len(b.Chapters) {
		return false
	}
	return a.Verse >= 0 && a.Verse < len(b.Chapters[a.Chapter])
}

// Text returns the verse text at the address. The address must be valid.
func (a Address) Text(c *Corpus) string {
	return c.Books[a.Book].Chapters[a.Chapter][a.Verse]
}

// Next returns the address that follows a in corpus traversal order,
// incrementing the verse, then wrapping to the first verse of the next
// chapter, then to the first chapter of the next book. The second return
// is false when a is the last verse of the last chapter of the last book.
// Chapters with zero verses are skipped.
func (a Address) Next(c *Corpus) (Address, bool) {
	if !a.Valid(c) {
		return Address{}, false
	}
	book := c.Books[a.Book]
	if a.Verse+1 < len(book.Chapters[a.Chapter]) {
		return Address{Book: a.Book, Chapter: a.Chapter, Verse: a.Verse + 1}, true
	}
	for ch := a.Chapter + 1; ch < len(book.Chapters); ch++ {
		if len(book.Chapters[ch]) > 0 {
			return Address{Book: a.Book, Chapter: ch, Verse: 0}, true
		}
	}
	for bk := a.Book + 1; bk < len(c.Books); bk++ {
		for ch := 0; ch < len(c.Books[bk].Chapters); ch++ {
			if len(c.Books[bk].Chapters[ch]) > 0 {
				return Address{Book: bk, Chapter: ch, Verse: 0}, true
			}
		}
	}
	return Address{}, false
}

// CrossesUnit reports whether moving from a to next leaves the current
// chapter or book. Playback uses this to insert a pacing pause between
// units.
func (a Address) CrossesUnit(next Address) bool {
	return next.Book != a.Book || next.Chapter != a.Chapter
}
