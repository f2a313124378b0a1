package corpus

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/antchfx/xmlquery"
)

// decodeXML decodes a Zefania-style XML corpus source:
//
//	<corpus title="...">
//	  <book id="Gen" name="Genesis">
//	    <chapter number="1">
//	      <verse number="1">In the beginning...</verse>
//	    </chapter>
//	  </book>
//	</corpus>
//
// Chapter and verse number attributes are 1-indexed and optional; when
// absent, document order is used. Gaps in verse numbering become empty
// verse strings so downstream addressing stays dense.
func decodeXML(data []byte) (*Corpus, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse XML source: %w", err)
	}

	corpusNode := xmlquery.FindOne(root, "//corpus")
	if corpusNode == nil {
		return nil, fmt.Errorf("XML source has no <corpus> element")
	}

	c := &Corpus{Title: corpusNode.SelectAttr("title")}

	for _, bookNode := range xmlquery.Find(corpusNode, "book") {
		book := &Book{
			ID:          bookNode.SelectAttr("id"),
			DisplayName: bookNode.SelectAttr("name"),
			Chapters:    [][]string{},
		}

		for _, chapterNode := range xmlquery.Find(bookNode, "chapter") {
			verses, err := decodeXMLChapter(chapterNode)
			if err != nil {
				return nil, fmt.Errorf("book %q: %w", book.ID, err)
			}
			book.Chapters = append(book.Chapters, verses)
		}

		c.Books = append(c.Books, book)
	}

	return c, nil
}

// decodeXMLChapter collects verse text from a <chapter> element,
// honoring explicit verse numbers when present.
func decodeXMLChapter(chapterNode *xmlquery.Node) ([]string, error) {
	type numbered struct {
		n    int
		text string
	}

	var entries []numbered
	next := 1
	for _, verseNode := range xmlquery.Find(chapterNode, "verse") {
		n := next
		if attr := verseNode.SelectAttr("number"); attr != "" {
			parsed, err := strconv.Atoi(attr)
			if err != nil || parsed < 1 {
				return nil, fmt.Errorf("invalid verse number %q", attr)
			}
			n = parsed
		}
		entries = append(entries, numbered{n: n, text: verseNode.InnerText()})
		next = n + 1
	}

	if len(entries) == 0 {
		return []string{}, nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	max := entries[len(entries)-1].n
	verses := make([]string, max)
	for _, e := range entries {
		verses[e.n-1] = e.text
	}
	return verses, nil
}
