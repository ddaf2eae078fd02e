// Package sqlite opens SQLite databases through one of two drivers:
// the pure Go modernc.org/sqlite by default, or mattn/go-sqlite3 when
// built with CGO and the cgo_sqlite tag.
//
// Build modes:
//   - Default (CGO_ENABLED=0): modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Use Open instead of sql.Open so the registered driver name matches
// the build mode.
package sqlite

import (
	"database/sql"
	"fmt"
)

// DriverName returns the registered SQL driver name for this build.
func DriverName() string {
	return driverName
}

// DriverType identifies the underlying implementation: "purego" for
// modernc.org/sqlite, "cgo" for mattn/go-sqlite3.
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO implementation is in use.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database with the build's driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenAt opens the database file at path with WAL journaling and
// foreign keys enabled. This is the engine's standard way to open its
// stores; the pragma syntax differs per driver, so the parameters come
// from the build-tagged driver file.
func OpenAt(path string) (*sql.DB, error) {
	db, err := Open(path + dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// OpenReadOnly opens a SQLite database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(path + "?mode=ro")
}

// MustOpen opens a SQLite database and panics on error. For tests and
// initialization code where failure is unrecoverable.
func MustOpen(dataSourceName string) *sql.DB {
	db, err := Open(dataSourceName)
	if err != nil {
		panic(fmt.Sprintf("sqlite: failed to open %s: %v", dataSourceName, err))
	}
	return db
}

// Info describes the SQLite driver configuration of this build.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
