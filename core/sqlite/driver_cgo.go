//go:build cgo_sqlite

// CGO driver via mattn/go-sqlite3.
// Build with: CGO_ENABLED=1 go build -tags cgo_sqlite
package sqlite

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3"
)

// dsn appends pragmas in the underscore-parameter form mattn understands.
func dsn(path string) string {
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}
