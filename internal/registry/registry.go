package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"codeberg.org/snonux/agritranslate/internal"
	"codeberg.org/snonux/agritranslate/internal/archive"
	"codeberg.org/snonux/agritranslate/internal/lang"
)

// Package is an installed offline translation package
type Package struct {
	Pair        lang.Pair
	Name        string // directory name under the packages dir
	Version     string
	Path        string
	InstalledAt time.Time
}

// Registry is the set of installed packages keyed by language pair
type Registry struct {
	dir         string
	archiveRoot string
	ledger      *ledger
	logger      *slog.Logger

	mu        sync.RWMutex
	installed map[lang.Pair]Package
}

// Open loads the registry for the packages in dir, using the SQLite ledger
// at dbPath. Ledger rows whose directory is gone are dropped and package
// directories missing from the ledger are added.
func Open(dir, dbPath string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create packages directory: %w", err)
	}
	if dbPath == "" {
		dbPath = filepath.Join(filepath.Dir(dir), "registry.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	l, err := openLedger(dbPath)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		dir:         dir,
		archiveRoot: filepath.Join(filepath.Dir(dir), "archive"),
		ledger:      l,
		logger:      logger,
		installed:   make(map[lang.Pair]Package),
	}

	if err := r.reconcile(); err != nil {
		l.close()
		return nil, err
	}
	return r, nil
}

func (r *Registry) reconcile() error {
	rows, err := r.ledger.all()
	if err != nil {
		return err
	}
	for _, pkg := range rows {
		if _, err := os.Stat(pkg.Path); err != nil {
			r.logger.Warn("dropping missing package from registry", "pair", pkg.Pair.String(), "path", pkg.Path)
			if err := r.ledger.remove(pkg.Pair); err != nil {
				return err
			}
			continue
		}
		r.installed[pkg.Pair] = pkg
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read packages directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		md, err := readMetadata(path)
		if err != nil {
			continue
		}
		if _, ok := r.installed[md.Pair]; ok {
			continue
		}

		pkg := Package{
			Pair:        md.Pair,
			Name:        e.Name(),
			Version:     md.Version,
			Path:        path,
			InstalledAt: time.Now(),
		}
		if info, err := e.Info(); err == nil {
			pkg.InstalledAt = info.ModTime()
		}
		if err := r.ledger.put(pkg); err != nil {
			return err
		}
		r.installed[md.Pair] = pkg
		r.logger.Debug("registered existing package", "pair", md.Pair.String(), "path", path)
	}
	return nil
}

// Dir returns the packages directory
func (r *Registry) Dir() string {
	return r.dir
}

// Lookup returns the installed package for pair
func (r *Registry) Lookup(pair lang.Pair) (Package, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pkg, ok := r.installed[pair]
	return pkg, ok
}

// List returns all installed packages sorted by pair
func (r *Registry) List() []Package {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Package, 0, len(r.installed))
	for _, pkg := range r.installed {
		list = append(list, pkg)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Pair.String() < list[j].Pair.String()
	})
	return list
}

// Install unpacks the package archive for pair into the packages directory
// and records it. The archive's metadata must describe the same pair.
func (r *Registry) Install(pair lang.Pair, archivePath string) (Package, error) {
	staging, err := os.MkdirTemp(r.dir, ".staging-")
	if err != nil {
		return Package{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := unpack(archivePath, staging); err != nil {
		return Package{}, err
	}

	root, err := packageRoot(staging)
	if err != nil {
		return Package{}, err
	}
	md, err := readMetadata(root)
	if err != nil {
		return Package{}, err
	}
	if md.Pair != pair {
		return Package{}, fmt.Errorf("package archive is for %s, expected %s", md.Pair, pair)
	}

	name := filepath.Base(root)
	if root == staging {
		name = internal.SanitizeFilename(fmt.Sprintf("translate-%s_%s", pair.Source, pair.Target))
	}
	final := filepath.Join(r.dir, name)

	r.mu.Lock()
	defer r.mu.Unlock()

	// An unregistered leftover with the same name is moved aside
	if _, err := os.Stat(final); err == nil {
		if _, err := archive.ArchiveDir(final, r.archiveRoot); err != nil {
			return Package{}, err
		}
	}
	if err := os.Rename(root, final); err != nil {
		return Package{}, fmt.Errorf("failed to move package into place: %w", err)
	}

	pkg := Package{
		Pair:        pair,
		Name:        name,
		Version:     md.Version,
		Path:        final,
		InstalledAt: time.Now(),
	}
	if err := r.ledger.put(pkg); err != nil {
		return Package{}, err
	}
	r.installed[pair] = pkg
	return pkg, nil
}

// Uninstall removes pair from the installed set and moves its directory
// into the archive folder. Uninstalling a pair that is not installed is a
// no-op.
func (r *Registry) Uninstall(pair lang.Pair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pkg, ok := r.installed[pair]
	if !ok {
		return nil
	}

	if _, err := os.Stat(pkg.Path); err == nil {
		archivedPath, err := archive.ArchiveDir(pkg.Path, r.archiveRoot)
		if err != nil {
			return err
		}
		r.logger.Info("archived package", "pair", pair.String(), "path", archivedPath)
	}

	if err := r.ledger.remove(pair); err != nil {
		return err
	}
	delete(r.installed, pair)
	return nil
}

// Close closes the ledger database
func (r *Registry) Close() error {
	return r.ledger.close()
}
