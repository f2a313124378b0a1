package corpus

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// LoadReason classifies why a corpus failed to load.
type LoadReason string

// Load failure reasons.
const (
	ReasonNotFound  LoadReason = "not_found"
	ReasonMalformed LoadReason = "malformed"
)

// LoadError is returned when a corpus source cannot be loaded. It is
// fatal to the reading experience but must be surfaced as a visible
// error state, never a crash.
type LoadError struct {
	Reason LoadReason
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corpus load failed (%s): %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("corpus load failed (%s): %s", e.Reason, e.Path)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// sourceDocument is the canonical JSON shape of a corpus source.
type sourceDocument struct {
	Title string        `json:"title,omitempty"`
	Books []*sourceBook `json:"books"`
}

type sourceBook struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Chapters    [][]string `json:"chapters"`
}

// Load reads, decodes, and validates a corpus source document. The load
// is all-or-nothing: on any failure the returned corpus is nil and the
// error is a *LoadError. Sources may be JSON or XML, optionally
// xz-compressed (detected by the .xz suffix).
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Reason: ReasonNotFound, Path: path, Err: err}
		}
		return nil, &LoadError{Reason: ReasonNotFound, Path: path, Err: err}
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, &LoadError{Reason: ReasonMalformed, Path: path, Err: fmt.Errorf("xz reader: %w", err)}
		}
		reader = xzr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &LoadError{Reason: ReasonMalformed, Path: path, Err: fmt.Errorf("read source: %w", err)}
	}

	c, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Reason: ReasonMalformed, Path: path, Err: err}
	}
	c.SourcePath = path
	return c, nil
}

// Decode decodes a corpus from raw source bytes, detecting JSON versus
// XML by the first non-space byte.
func Decode(data []byte) (*Corpus, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty source document")
	}

	var c *Corpus
	var err error
	if trimmed[0] == '<' {
		c, err = decodeXML(data)
	} else {
		c, err = decodeJSON(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	c.SourceHash = hex.EncodeToString(sum[:])
	return c, nil
}

func decodeJSON(data []byte) (*Corpus, error) {
	var doc sourceDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON source: %w", err)
	}

	c := &Corpus{Title: doc.Title}
	for _, sb := range doc.Books {
		chapters := sb.Chapters
		if chapters == nil {
			chapters = [][]string{}
		}
		c.Books = append(c.Books, &Book{
			ID:          sb.ID,
			DisplayName: sb.DisplayName,
			Chapters:    chapters,
		})
	}
	return c, nil
}

// validate checks the structural invariants of a decoded corpus: at
// least one book, unique non-empty book IDs. Empty chapter lists and
// empty verse strings are allowed.
func validate(c *Corpus) error {
	if len(c.Books) == 0 {
		return fmt.Errorf("source contains no books")
	}
	seen := make(map[string]bool, len(c.Books))
	for i, b := range c.Books {
		if b.ID == "" {
			return fmt.Errorf("books[%d]: missing book ID", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("books[%d]: duplicate book ID %q", i, b.ID)
		}
		seen[b.ID] = true
		if b.DisplayName == "" {
			b.DisplayName = b.ID
		}
	}
	return nil
}
