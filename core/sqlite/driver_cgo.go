//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package sqlite

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3"

	// mattn pragma syntax.
	dsnParams = "?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000"
)
