package verseindex

import (
	"math/rand"
	"testing"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
)

func buildTestCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		Books: []*corpus.Book{
			{
				ID:          "Gen",
				DisplayName: "Genesis",
				Chapters: [][]string{
					{"In the beginning.", ""},
					{"Thus the heavens."},
				},
			},
			{
				ID:          "John",
				DisplayName: "John",
				Chapters: [][]string{
					{"In the beginning was the Word."},
				},
			},
		},
	}
}

func TestBuildOrdering(t *testing.T) {
	ix := Build(buildTestCorpus())

	if ix.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", ix.Len())
	}

	want := []corpus.Address{
		{Book: 0, Chapter: 0, Verse: 0},
		{Book: 0, Chapter: 0, Verse: 1},
		{Book: 0, Chapter: 1, Verse: 0},
		{Book: 1, Chapter: 0, Verse: 0},
	}
	for i, addr := range want {
		if ix.At(i).Address != addr {
			t.Errorf("entry %d address = %v, want %v", i, ix.At(i).Address, addr)
		}
	}

	if ix.At(1).Text != "" {
		t.Error("empty verse must be indexed, not filtered")
	}
	if ix.At(3).BookName != "John" {
		t.Errorf("entry 3 book name = %q, want John", ix.At(3).BookName)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	ix := Build(&corpus.Corpus{Books: []*corpus.Book{{ID: "Gen", Chapters: [][]string{}}}})

	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	if _, ok := ix.RandomEntry(); ok {
		t.Error("RandomEntry on empty index should report false")
	}
}

func TestRandomEntryDeterministic(t *testing.T) {
	first := Build(buildTestCorpus(), WithRand(rand.New(rand.NewSource(42))))
	second := Build(buildTestCorpus(), WithRand(rand.New(rand.NewSource(42))))

	for i := 0; i < 10; i++ {
		a, ok := first.RandomEntry()
		if !ok {
			t.Fatal("RandomEntry reported empty index")
		}
		b, _ := second.RandomEntry()
		if a.Address != b.Address {
			t.Fatalf("selection %d diverged: %v vs %v", i, a.Address, b.Address)
		}
	}
}

func TestRandomEntryInRange(t *testing.T) {
	c := buildTestCorpus()
	ix := Build(c, WithRand(rand.New(rand.NewSource(7))))

	for i := 0; i < 50; i++ {
		e, ok := ix.RandomEntry()
		if !ok {
			t.Fatal("RandomEntry reported empty index")
		}
		if !e.Address.Valid(c) {
			t.Fatalf("RandomEntry returned invalid address %v", e.Address)
		}
	}
}
