// Package database provides SQLite-based storage for compliance reports.
//
// Every analysis can be stored in the reports table together with a few
// indexed columns (host, percentage, tier) so that the history command
// can list and compare runs without decoding the full JSON document.
//
// The database lives in a single file (reports.db) under the XDG data
// directory and is accessed through modernc.org/sqlite, a CGO-free
// driver. WAL mode is enabled by default.
package database
