// Package registry tracks which offline translation packages are installed
// locally. The installed set is a map keyed by language pair, persisted in a
// SQLite ledger next to the package directory and reconciled with the
// directory contents when opened.
package registry
