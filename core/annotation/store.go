package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperReader/core/corpus"
	jrerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

// StorageKey is the single key the whole annotation collection is
// persisted under.
const StorageKey = "annotations"

// ErrInvalidKind is returned when an operation names an unknown kind.
var ErrInvalidKind = errors.New("invalid annotation kind")

// Blobs is the persistence port the store writes its serialized state
// through. Get reports a never-written key with an error unwrapping to
// jrerrors.ErrNotFound; that is the normal "no annotations yet" state.
type Blobs interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
}

// Store owns all annotation instances exclusively. Every mutating call
// rewrites the full collection through the Blobs port before returning;
// write failures degrade the store to in-memory-only rather than
// failing the session.
type Store struct {
	mu    sync.Mutex
	blobs Blobs
	byKey map[Kind]map[corpus.Address]*Annotation

	// now is injectable for tests.
	now func() time.Time

	// lastErr holds the most recent persistence failure, readable by
	// the UI collaborator. Cleared by the next successful write.
	lastErr error
}

// NewStore creates an empty store backed by the given persistence port.
func NewStore(blobs Blobs) *Store {
	s := &Store{
		blobs: blobs,
		byKey: make(map[Kind]map[corpus.Address]*Annotation),
		now:   time.Now,
	}
	for _, k := range Kinds() {
		s.byKey[k] = make(map[corpus.Address]*Annotation)
	}
	return s
}

// blob is the serialized form of the whole store: all kinds together.
type blob struct {
	Annotations []*Annotation `json:"annotations"`
}

// Load reads the persisted collection. Called once at startup. A
// missing blob is a normal empty state; a corrupt blob leaves the store
// empty rather than failing the session.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.blobs.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, jrerrors.ErrNotFound) {
			logging.StorageEvent("annotation_load_failed", "error", err.Error())
			s.lastErr = err
		}
		return
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		logging.StorageEvent("annotation_blob_corrupt", "error", err.Error())
		s.lastErr = fmt.Errorf("decode annotation blob: %w", err)
		return
	}

	for _, a := range b.Annotations {
		if !a.Kind.IsValid() {
			continue
		}
		s.byKey[a.Kind][a.Address] = a
	}
}

// Upsert creates or updates the annotation for (kind, addr). An
// existing annotation keeps its ID; LastModified always refreshes, and
// a non-nil CustomText in the payload replaces the note body. The
// duplicate-add of a bookmark or favorite therefore refreshes the
// timestamp rather than being a strict no-op.
func (s *Store) Upsert(kind Kind, addr corpus.Address, p Payload) (*Annotation, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byKey[kind][addr]
	if !ok {
		a = &Annotation{
			ID:           newID(),
			Kind:         kind,
			Address:      addr,
			BookName:     p.BookName,
			SnapshotText: p.SnapshotText,
		}
		s.byKey[kind][addr] = a
	}
	if p.CustomText != nil {
		a.CustomText = *p.CustomText
	}
	a.LastModified = s.now()

	cp := *a
	return &cp, s.persistLocked()
}

// Remove deletes the annotation for (kind, addr). Removing an absent
// annotation is a no-op, not an error.
func (s *Store) Remove(kind Kind, addr corpus.Address) error {
	if !kind.IsValid() {
		return ErrInvalidKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byKey[kind][addr]; !ok {
		return nil
	}
	delete(s.byKey[kind], addr)
	return s.persistLocked()
}

// Find returns the annotation for (kind, addr), or nil when absent.
func (s *Store) Find(kind Kind, addr corpus.Address) *Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.byKey[kind][addr]
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// ListByKind returns all annotations of the given kind, unordered.
func (s *Store) ListByKind(kind Kind) []*Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Annotation, 0, len(s.byKey[kind]))
	for _, a := range s.byKey[kind] {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

// Count returns the number of annotations of the given kind.
func (s *Store) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey[kind])
}

// LastError returns the most recent persistence failure, or nil. The
// UI collaborator surfaces this as a degraded-mode notice.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// persistLocked serializes the whole store and writes it through the
// Blobs port. The in-memory state is already updated; a write failure
// is recorded and logged but does not roll back the mutation.
func (s *Store) persistLocked() error {
	var b blob
	for _, k := range Kinds() {
		for _, a := range s.byKey[k] {
			b.Annotations = append(b.Annotations, a)
		}
	}

	data, err := json.Marshal(&b)
	if err != nil {
		s.lastErr = err
		return err
	}

	if err := s.blobs.Put(StorageKey, data); err != nil {
		logging.StorageEvent("annotation_persist_failed", "error", err.Error())
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	return nil
}
