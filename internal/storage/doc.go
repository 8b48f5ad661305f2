// Package storage keeps an append-only history of applied statuses.
//
// History is write-mostly: it is never read back to restore a status on startup.
// Drivers:
//   - "file": JSON Lines, dependency-free
//   - "sqlite": SQLite database via modernc.org/sqlite
package storage
