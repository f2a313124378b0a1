// Package ref parses human-entered scripture references ("John.3.16",
// "John 3:16", "1 John 4") and resolves them against a loaded corpus to
// a concrete verse address. Deep-links from the CLI and the API enter
// the hierarchy through here.
package ref

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	"github.com/FocuswithJustin/JuniperReader/core/errors"
)

// Ref is a parsed reference. Chapter and Verse are 1-indexed; zero
// means unspecified (a book-only or chapter-only reference).
type Ref struct {
	// Book is the book name or code as written (e.g., "Gen", "1John").
	Book string

	// Chapter is the 1-indexed chapter number, 0 for whole-book references.
	Chapter int

	// Verse is the 1-indexed verse number, 0 for whole-chapter references.
	Verse int
}

// refGrammar is the participle grammar for references.
// Examples: "Gen", "Gen.1", "Gen.1.1", "John 3:16", "1 John 4:8"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `parser:"@Int?"`
	BookName   string       `parser:"@Ident"`
	ChapterRef *chapterPart `parser:"( Sep? @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int  `parser:"@Int"`
	VerseRef *int `parser:"( Sep @Int )?"`
}

// refLexer defines the lexer for references. Both "." (OSIS style) and
// ":" (citation style) separate chapter from verse.
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Sep", Pattern: `[.:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// refParser is the participle parser for references.
var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string.
// Supported forms:
//   - "Gen" (book only)
//   - "Gen.1" / "Gen 1" (book and chapter)
//   - "Gen.1.1" / "Gen 1:1" (book, chapter, and verse)
//   - "1John.3.16" / "1 John 3:16" (numbered book names)
func Parse(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewParse("reference", "empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ParseError{Format: "reference", Message: strconv.Quote(s), Err: err}
	}

	r := &Ref{Book: parsed.BookPrefix + parsed.BookName}
	if parsed.ChapterRef != nil {
		r.Chapter = parsed.ChapterRef.Chapter
		if parsed.ChapterRef.VerseRef != nil {
			r.Verse = *parsed.ChapterRef.VerseRef
		}
	}
	return r, nil
}

// String returns the reference in OSIS-style dotted form.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter > 0 {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(r.Verse))
		}
	}
	return sb.String()
}

// Resolve maps the reference to a concrete address in the corpus.
// Books match by ID or display name, case-insensitively and ignoring
// spaces; an unambiguous prefix also matches. Unspecified chapter or
// verse default to the first. Out-of-range coordinates and unknown
// books return descriptive errors.
func (r *Ref) Resolve(c *corpus.Corpus) (corpus.Address, error) {
	bi := findBook(c, r.Book)
	if bi < 0 {
		return corpus.Address{}, errors.NewNotFound("book", r.Book)
	}
	book := c.Books[bi]

	chapter := r.Chapter
	if chapter == 0 {
		chapter = 1
	}
	if chapter > len(book.Chapters) {
		return corpus.Address{}, errors.NewValidation("chapter",
			"chapter "+strconv.Itoa(chapter)+" out of range for "+book.DisplayName)
	}

	verse := r.Verse
	if verse == 0 {
		verse = 1
	}
	if verse > len(book.Chapters[chapter-1]) {
		return corpus.Address{}, errors.NewValidation("verse",
			"verse "+strconv.Itoa(verse)+" out of range for "+book.DisplayName+" "+strconv.Itoa(chapter))
	}

	return corpus.Address{Book: bi, Chapter: chapter - 1, Verse: verse - 1}, nil
}

// normalize lowercases a book name and strips spaces so "1 John",
// "1john", and "1John" compare equal.
func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// findBook returns the index of the book matching name, or -1. Exact
// matches on ID or display name win; otherwise a prefix match is
// accepted only when unambiguous.
func findBook(c *corpus.Corpus, name string) int {
	want := normalize(name)

	for i, b := range c.Books {
		if normalize(b.ID) == want || normalize(b.DisplayName) == want {
			return i
		}
	}

	match := -1
	for i, b := range c.Books {
		if strings.HasPrefix(normalize(b.ID), want) || strings.HasPrefix(normalize(b.DisplayName), want) {
			if match >= 0 {
				return -1 // ambiguous
			}
			match = i
		}
	}
	return match
}
