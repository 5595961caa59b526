package registry

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/agritranslate/internal/lang"
)

const schema = `
CREATE TABLE IF NOT EXISTS packages (
	source       TEXT NOT NULL,
	target       TEXT NOT NULL,
	name         TEXT NOT NULL,
	version      TEXT NOT NULL DEFAULT '',
	path         TEXT NOT NULL,
	installed_at INTEGER NOT NULL,
	PRIMARY KEY (source, target)
);`

// ledger persists installed packages in SQLite
type ledger struct {
	db *sql.DB
}

func openLedger(dbPath string) (*ledger, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create registry schema: %w", err)
	}
	return &ledger{db: db}, nil
}

func (l *ledger) all() ([]Package, error) {
	rows, err := l.db.Query(`SELECT source, target, name, version, path, installed_at FROM packages`)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	var packages []Package
	for rows.Next() {
		var (
			pkg         Package
			installedAt int64
		)
		if err := rows.Scan(&pkg.Pair.Source, &pkg.Pair.Target, &pkg.Name, &pkg.Version, &pkg.Path, &installedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		pkg.InstalledAt = time.Unix(installedAt, 0)
		packages = append(packages, pkg)
	}
	return packages, rows.Err()
}

func (l *ledger) put(pkg Package) error {
	_, err := l.db.Exec(`
		INSERT INTO packages (source, target, name, version, path, installed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, target) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			path = excluded.path,
			installed_at = excluded.installed_at`,
		pkg.Pair.Source, pkg.Pair.Target, pkg.Name, pkg.Version, pkg.Path, pkg.InstalledAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record package %s: %w", pkg.Pair, err)
	}
	return nil
}

func (l *ledger) remove(pair lang.Pair) error {
	if _, err := l.db.Exec(`DELETE FROM packages WHERE source = ? AND target = ?`, pair.Source, pair.Target); err != nil {
		return fmt.Errorf("failed to remove package %s: %w", pair, err)
	}
	return nil
}

func (l *ledger) close() error {
	return l.db.Close()
}
