// Package sqlite selects between two SQLite drivers for the annotation
// database: pure Go modernc.org/sqlite by default, or mattn/go-sqlite3
// when built with `-tags cgo_sqlite` and CGO enabled. The two register
// different driver names and take pragmas in different DSN forms, so
// callers open databases through this package rather than sql.Open.
package sqlite

import "database/sql"

// DriverName returns the name the active driver registered with
// database/sql.
func DriverName() string {
	return driverName
}

// IsCGO reports whether the CGO driver backs the package.
func IsCGO() bool {
	return driverType == "cgo"
}

// Description identifies the active driver for version and health
// output, e.g. "purego (modernc.org/sqlite)".
func Description() string {
	return driverType + " (" + driverPackage + ")"
}

// Open opens the database at path with pragmas suited to the reader:
// WAL journaling and a busy timeout, so a CLI invocation and a running
// server can share the annotation database without "database is
// locked" failures.
func Open(path string) (*sql.DB, error) {
	return sql.Open(driverName, dsn(path))
}
