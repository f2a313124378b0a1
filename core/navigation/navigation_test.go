package navigation

import (
	"errors"
	"testing"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
)

func testCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		Books: []*corpus.Book{
			{
				ID:          "Gen",
				DisplayName: "Genesis",
				Chapters:    [][]string{{"a", "b"}, {"c"}},
			},
			{
				ID:          "John",
				DisplayName: "John",
				Chapters:    [][]string{{"d"}},
			},
		},
	}
}

func TestResolve(t *testing.T) {
	c := testCorpus()
	addr := corpus.Address{Book: 0, Chapter: 1, Verse: 0}

	chain, err := Resolve(addr, c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}

	if chain[0].Level != LevelBook || chain[0].Index != 0 || chain[0].Label != "Genesis" {
		t.Errorf("book selection = %+v", chain[0])
	}
	if chain[1].Level != LevelChapter || chain[1].Index != 1 || chain[1].Label != "Chapter 2" {
		t.Errorf("chapter selection = %+v", chain[1])
	}
	if chain[2].Level != LevelVerse || chain[2].Index != 0 || chain[2].Label != "Verse 1" {
		t.Errorf("verse selection = %+v", chain[2])
	}
}

func TestResolveRoundTripAllAddresses(t *testing.T) {
	c := testCorpus()

	for bi, b := range c.Books {
		for ci, ch := range b.Chapters {
			for vi := range ch {
				addr := corpus.Address{Book: bi, Chapter: ci, Verse: vi}
				chain, err := Resolve(addr, c)
				if err != nil {
					t.Fatalf("Resolve(%v) failed: %v", addr, err)
				}
				got, ok := Flatten(chain)
				if !ok || got != addr {
					t.Errorf("round-trip of %v = %v (%v)", addr, got, ok)
				}
			}
		}
	}
}

func TestResolveInvalidAddress(t *testing.T) {
	c := testCorpus()

	tests := []corpus.Address{
		{Book: -1},
		{Book: 2},
		{Book: 0, Chapter: 2},
		{Book: 0, Chapter: 0, Verse: 2},
	}
	for _, addr := range tests {
		_, err := Resolve(addr, c)
		var re *ResolutionError
		if !errors.As(err, &re) {
			t.Errorf("Resolve(%v): %v, want *ResolutionError", addr, err)
			continue
		}
		if re.Address != addr {
			t.Errorf("ResolutionError.Address = %v, want %v", re.Address, addr)
		}
	}
}

func TestFlattenRejectsMalformedChains(t *testing.T) {
	if _, ok := Flatten(nil); ok {
		t.Error("Flatten(nil) should fail")
	}
	if _, ok := Flatten([]Selection{{Level: LevelBook}}); ok {
		t.Error("Flatten of a partial chain should fail")
	}
	bad := []Selection{{Level: LevelVerse}, {Level: LevelChapter}, {Level: LevelBook}}
	if _, ok := Flatten(bad); ok {
		t.Error("Flatten of an out-of-order chain should fail")
	}
}
