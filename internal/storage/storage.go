// Package storage provides the SQLite-backed blob store that persists
// the annotation collection. The whole collection lives under a single
// key and is rewritten in full after every mutation, so the schema is a
// plain key/value table.
package storage

import (
	"database/sql"
	"time"

	jrerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// BlobStore is a durable key/value store for serialized blobs. It
// implements the annotation persistence port.
type BlobStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the blob database at path.
func Open(path string) (*BlobStore, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, jrerrors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, jrerrors.NewIO("migrate", path, err)
	}
	return &BlobStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BlobStore) Close() error {
	return s.db.Close()
}

// Get returns the blob stored under key. A never-written key yields an
// error unwrapping to jrerrors.ErrNotFound.
func (s *BlobStore) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM blobs WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, jrerrors.NewNotFound("blob", key)
	}
	if err != nil {
		return nil, jrerrors.NewIO("read", key, err)
	}
	return data, nil
}

// Put writes the blob under key, replacing any previous value. The
// write is committed before Put returns.
func (s *BlobStore) Put(key string, data []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at",
		key, data, time.Now().Unix())
	if err != nil {
		return jrerrors.NewIO("write", key, err)
	}
	return nil
}

// Delete removes the blob under key. Deleting an absent key is a no-op.
func (s *BlobStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM blobs WHERE key = ?", key); err != nil {
		return jrerrors.NewIO("delete", key, err)
	}
	return nil
}
