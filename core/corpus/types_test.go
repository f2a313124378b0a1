package corpus

import "testing"

// testCorpus builds a small three-book corpus used across the package tests.
func testCorpus() *Corpus {
	return &Corpus{
		Title: "Test",
		Books: []*Book{
			{
				ID:          "Gen",
				DisplayName: "Genesis",
				Chapters: [][]string{
					{"In the beginning God created the heaven and the earth.", "And the earth was without form, and void."},
					{"Thus the heavens and the earth were finished."},
				},
			},
			{
				ID:          "Exod",
				DisplayName: "Exodus",
				Chapters: [][]string{
					{"Now these are the names of the children of Israel."},
				},
			},
			{
				ID:          "Ps",
				DisplayName: "Psalms",
				Chapters: [][]string{
					{},
					{"Blessed is the man that walketh not in the counsel of the ungodly.", "But his delight is in the law of the LORD."},
				},
			},
		},
	}
}

func TestAddressValid(t *testing.T) {
	c := testCorpus()

	tests := []struct {
		name string
		addr Address
		want bool
	}{
		{"first verse", Address{0, 0, 0}, true},
		{"last verse", Address{2, 1, 1}, true},
		{"negative book", Address{-1, 0, 0}, false},
		{"book out of range", Address{3, 0, 0}, false},
		{"chapter out of range", Address{0, 2, 0}, false},
		{"verse out of range", Address{0, 0, 2}, false},
		{"empty chapter", Address{2, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Valid(c); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}

	if (Address{0, 0, 0}).Valid(nil) {
		t.Error("Valid against nil corpus should be false")
	}
}

func TestAddressNext(t *testing.T) {
	c := testCorpus()

	tests := []struct {
		name   string
		addr   Address
		want   Address
		wantOK bool
	}{
		{"verse increment", Address{0, 0, 0}, Address{0, 0, 1}, true},
		{"chapter wrap", Address{0, 0, 1}, Address{0, 1, 0}, true},
		{"book wrap", Address{0, 1, 0}, Address{1, 0, 0}, true},
		{"skips empty chapter", Address{1, 0, 0}, Address{2, 1, 0}, true},
		{"end of corpus", Address{2, 1, 1}, Address{}, false},
		{"invalid address", Address{9, 0, 0}, Address{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.addr.Next(c)
			if ok != tt.wantOK {
				t.Fatalf("Next(%v) ok = %v, want %v", tt.addr, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Next(%v) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestAddressTraversalVisitsEveryVerse(t *testing.T) {
	c := testCorpus()

	count := 1
	addr := Address{0, 0, 0}
	for {
		next, ok := addr.Next(c)
		if !ok {
			break
		}
		if !next.Valid(c) {
			t.Fatalf("Next(%v) returned invalid address %v", addr, next)
		}
		addr = next
		count++
	}

	if count != c.VerseTotal() {
		t.Errorf("traversal visited %d verses, corpus has %d", count, c.VerseTotal())
	}
}

func TestAddressCrossesUnit(t *testing.T) {
	a := Address{0, 0, 1}
	if a.CrossesUnit(Address{0, 0, 2}) {
		t.Error("same chapter should not cross a unit")
	}
	if !a.CrossesUnit(Address{0, 1, 0}) {
		t.Error("chapter change should cross a unit")
	}
	if !a.CrossesUnit(Address{1, 0, 0}) {
		t.Error("book change should cross a unit")
	}
}

func TestBookByID(t *testing.T) {
	c := testCorpus()

	b, i := c.BookByID("Exod")
	if b == nil || i != 1 {
		t.Fatalf("BookByID(Exod) = %v, %d", b, i)
	}
	if b.DisplayName != "Exodus" {
		t.Errorf("DisplayName = %q, want Exodus", b.DisplayName)
	}

	if b, i := c.BookByID("Rev"); b != nil || i != -1 {
		t.Errorf("BookByID(Rev) = %v, %d, want nil, -1", b, i)
	}
}

func TestVerseTotal(t *testing.T) {
	c := testCorpus()
	if got := c.VerseTotal(); got != 6 {
		t.Errorf("VerseTotal() = %d, want 6", got)
	}
}
