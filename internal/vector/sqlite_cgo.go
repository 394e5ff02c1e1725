//go:build cgo && !purego

package vector

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver used by SQLiteIndex.
	DriverName = "sqlite3"
	// BuildMode describes the SQLite build configuration.
	BuildMode = "cgo"
)
