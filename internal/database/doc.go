// Package database provides SQLite-based storage for perfscan.
//
// This package implements the TaskDB, which stores:
//   - Optimization tasks created by applied fixes, with their lifecycle status
//   - An archive of imported audit reports, de-duplicated by content digest
//
// SQLite (via modernc.org/sqlite) keeps the store a single CGO-free file.
// A single connection serializes writes; WAL mode lets readers proceed
// while a write is in flight.
//
// TaskDB implements fixer.TaskRepository.
package database
