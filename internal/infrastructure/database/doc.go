// Package database provides SQLite connectivity for Master Control.
//
// It is used by the sqlite storage backend, which keeps every JSON record
// (device index, per-device configs, per-device log streams) as one row in
// a key/value table.
//
// This package manages:
//   - Database connection with WAL mode and a busy timeout
//   - Forward-only schema migrations embedded in the binary
//   - Connection lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/mastercontrol.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
