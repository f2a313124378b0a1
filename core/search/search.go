// Package search implements conjunctive substring search over a verse
// index. Queries are cheap and side-effect free, safe to run on every
// keystroke.
package search

import (
	"strings"

	"github.com/FocuswithJustin/JuniperReader/core/verseindex"
)

// Result is the outcome of a search. An insufficient query (fewer than
// two tokens) is distinct from a query that matched nothing; the UI
// renders the two differently.
type Result struct {
	// Insufficient is true when the query had fewer than two non-empty
	// tokens and no search was performed.
	Insufficient bool

	// Tokens are the lowercased query words the search ran with.
	Tokens []string

	// Entries are the matching verses in index (corpus traversal) order.
	Entries []verseindex.Entry
}

// MinTokens is the number of query words required before a search runs.
const MinTokens = 2

// Tokenize splits a query on whitespace into lowercased tokens.
func Tokenize(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// Search returns every index entry whose lowercased text contains all
// query tokens as substrings. Token order in the query is irrelevant;
// verse text is not tokenized, matching is pure substring containment.
func Search(query string, ix *verseindex.Index) Result {
	tokens := Tokenize(query)
	if len(tokens) < MinTokens {
		return Result{Insufficient: true, Tokens: tokens}
	}

	result := Result{Tokens: tokens}
	for _, entry := range ix.All() {
		if matches(entry.Text, tokens) {
			result.Entries = append(result.Entries, entry)
		}
	}
	return result
}

func matches(text string, tokens []string) bool {
	lowered := strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(lowered, tok) {
			return false
		}
	}
	return true
}
