// Package journal records operation completions in a local SQLite database.
//
// Every finished call of every operation kind is stored with its kind,
// generation, outcome (succeeded, failed or stale), failure message and
// duration. The journal never stores results themselves; the result set lives
// only in memory and on the service.
//
// We use SQLite (via modernc.org/sqlite) because it is a single file with a
// CGO-free driver, so the binary cross-compiles without a toolchain for C.
// WAL mode lets `filingctl history` read while a `watch` session writes.
package journal
