//go:build !cgo || purego

package vector

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver used by SQLiteIndex.
	DriverName = "sqlite"
	// BuildMode describes the SQLite build configuration.
	BuildMode = "purego"
)
