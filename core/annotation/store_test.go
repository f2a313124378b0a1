package annotation

import (
	"errors"
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	jrerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
)

// memBlobs is an in-memory Blobs implementation for tests.
type memBlobs struct {
	data    map[string][]byte
	failPut bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: make(map[string][]byte)}
}

func (m *memBlobs) Get(key string) ([]byte, error) {
	d, ok := m.data[key]
	if !ok {
		return nil, jrerrors.NewNotFound("blob", key)
	}
	return d, nil
}

func (m *memBlobs) Put(key string, data []byte) error {
	if m.failPut {
		return errors.New("disk full")
	}
	m.data[key] = data
	return nil
}

func (m *memBlobs) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestStore(blobs Blobs) (*Store, *time.Time) {
	s := NewStore(blobs)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	s, now := newTestStore(newMemBlobs())
	addr := corpus.Address{Book: 0, Chapter: 2, Verse: 15}

	first, err := s.Upsert(KindNote, addr, Payload{
		BookName:     "Genesis",
		SnapshotText: "And the LORD God took the man.",
		CustomText:   strPtr("garden duty"),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("created annotation has empty ID")
	}
	if first.CustomText != "garden duty" {
		t.Errorf("CustomText = %q", first.CustomText)
	}
	firstModified := first.LastModified

	*now = now.Add(time.Hour)
	second, err := s.Upsert(KindNote, addr, Payload{CustomText: strPtr("edited")})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert changed ID: %q -> %q", first.ID, second.ID)
	}
	if !second.LastModified.After(firstModified) {
		t.Error("LastModified not refreshed on update")
	}
	if second.CustomText != "edited" {
		t.Errorf("CustomText = %q, want edited", second.CustomText)
	}
	if second.SnapshotText != "And the LORD God took the man." {
		t.Error("SnapshotText must survive updates")
	}
	if got := s.Count(KindNote); got != 1 {
		t.Errorf("Count = %d, want exactly one annotation per (kind, address)", got)
	}
}

func TestUpsertDuplicateBookmarkRefreshesTimestamp(t *testing.T) {
	s, now := newTestStore(newMemBlobs())
	addr := corpus.Address{Book: 1, Chapter: 0, Verse: 0}

	first, _ := s.Upsert(KindBookmark, addr, Payload{BookName: "Exodus", SnapshotText: "Now these are the names."})
	*now = now.Add(time.Minute)
	second, _ := s.Upsert(KindBookmark, addr, Payload{BookName: "Exodus", SnapshotText: "Now these are the names."})

	if second.ID != first.ID {
		t.Error("duplicate add must collapse onto the existing annotation")
	}
	if !second.LastModified.After(first.LastModified) {
		t.Error("duplicate add refreshes LastModified")
	}
}

func TestSameAddressDifferentKinds(t *testing.T) {
	s, _ := newTestStore(newMemBlobs())
	addr := corpus.Address{Book: 0, Chapter: 0, Verse: 0}

	b, _ := s.Upsert(KindBookmark, addr, Payload{})
	f, _ := s.Upsert(KindFavorite, addr, Payload{})

	if b.ID == f.ID {
		t.Error("different kinds at the same address are distinct annotations")
	}
	if s.Count(KindBookmark) != 1 || s.Count(KindFavorite) != 1 {
		t.Error("kinds must not collapse across categories")
	}
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(newMemBlobs())
	addr := corpus.Address{Book: 0, Chapter: 0, Verse: 1}

	if _, err := s.Upsert(KindFavorite, addr, Payload{}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Remove(KindFavorite, addr); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Find(KindFavorite, addr) != nil {
		t.Error("Find after Remove should be absent")
	}
	// Removing again is a no-op, not an error.
	if err := s.Remove(KindFavorite, addr); err != nil {
		t.Errorf("second Remove returned error: %v", err)
	}
}

func TestInvalidKind(t *testing.T) {
	s, _ := newTestStore(newMemBlobs())
	addr := corpus.Address{}

	if _, err := s.Upsert(Kind("highlight"), addr, Payload{}); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Upsert with invalid kind: %v, want ErrInvalidKind", err)
	}
	if err := s.Remove(Kind("highlight"), addr); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Remove with invalid kind: %v, want ErrInvalidKind", err)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	blobs := newMemBlobs()
	s, _ := newTestStore(blobs)

	note := corpus.Address{Book: 0, Chapter: 0, Verse: 0}
	bookmark := corpus.Address{Book: 1, Chapter: 2, Verse: 3}
	favorite := corpus.Address{Book: 2, Chapter: 0, Verse: 7}

	s.Upsert(KindNote, note, Payload{BookName: "Genesis", SnapshotText: "In the beginning.", CustomText: strPtr("start here")})
	s.Upsert(KindBookmark, bookmark, Payload{BookName: "Exodus", SnapshotText: "Let my people go."})
	s.Upsert(KindFavorite, favorite, Payload{BookName: "Psalms", SnapshotText: "The LORD is my shepherd."})

	reloaded := NewStore(blobs)
	reloaded.Load()

	n := reloaded.Find(KindNote, note)
	if n == nil || n.CustomText != "start here" || n.Kind != KindNote {
		t.Errorf("note did not round-trip: %+v", n)
	}
	if reloaded.Find(KindBookmark, bookmark) == nil {
		t.Error("bookmark did not round-trip")
	}
	f := reloaded.Find(KindFavorite, favorite)
	if f == nil || f.Address != favorite {
		t.Errorf("favorite did not round-trip: %+v", f)
	}
}

func TestLoadMissingBlobIsEmptyStore(t *testing.T) {
	s, _ := newTestStore(newMemBlobs())
	s.Load()

	if s.LastError() != nil {
		t.Errorf("missing blob is not an error, got %v", s.LastError())
	}
	for _, k := range Kinds() {
		if s.Count(k) != 0 {
			t.Errorf("Count(%s) = %d, want 0", k, s.Count(k))
		}
	}
}

func TestLoadCorruptBlobLeavesStoreEmpty(t *testing.T) {
	blobs := newMemBlobs()
	blobs.data[StorageKey] = []byte("{not json")

	s, _ := newTestStore(blobs)
	s.Load()

	for _, k := range Kinds() {
		if s.Count(k) != 0 {
			t.Errorf("corrupt blob must leave store empty, Count(%s) = %d", k, s.Count(k))
		}
	}
	if s.LastError() == nil {
		t.Error("corrupt blob should be reported through LastError")
	}
}

func TestWriteFailureDegradesToMemory(t *testing.T) {
	blobs := newMemBlobs()
	blobs.failPut = true
	s, _ := newTestStore(blobs)
	addr := corpus.Address{Book: 0, Chapter: 0, Verse: 0}

	a, err := s.Upsert(KindNote, addr, Payload{CustomText: strPtr("kept in memory")})
	if err == nil {
		t.Fatal("Upsert should report the persistence failure")
	}
	if a == nil {
		t.Fatal("Upsert must still return the in-memory annotation")
	}
	if s.Find(KindNote, addr) == nil {
		t.Error("mutation must survive in memory despite write failure")
	}
	if s.LastError() == nil {
		t.Error("LastError should hold the persistence failure")
	}

	// A later successful write clears the degraded state.
	blobs.failPut = false
	if _, err := s.Upsert(KindNote, addr, Payload{}); err != nil {
		t.Fatalf("Upsert after recovery failed: %v", err)
	}
	if s.LastError() != nil {
		t.Errorf("LastError not cleared after successful write: %v", s.LastError())
	}
}

func TestListByKind(t *testing.T) {
	s, _ := newTestStore(newMemBlobs())

	s.Upsert(KindBookmark, corpus.Address{Book: 0, Chapter: 0, Verse: 0}, Payload{})
	s.Upsert(KindBookmark, corpus.Address{Book: 0, Chapter: 0, Verse: 1}, Payload{})
	s.Upsert(KindNote, corpus.Address{Book: 0, Chapter: 0, Verse: 0}, Payload{})

	if got := len(s.ListByKind(KindBookmark)); got != 2 {
		t.Errorf("ListByKind(bookmark) = %d entries, want 2", got)
	}
	if got := len(s.ListByKind(KindFavorite)); got != 0 {
		t.Errorf("ListByKind(favorite) = %d entries, want 0", got)
	}
}
