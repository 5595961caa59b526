// Package resolver turns a language pair into a ready translation
// capability, installing the offline package from the remote catalog when
// it is not installed yet.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/agritranslate/internal/catalog"
	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/registry"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// InstalledSet is the local set of installed packages
type InstalledSet interface {
	Lookup(pair lang.Pair) (registry.Package, bool)
	Install(pair lang.Pair, archivePath string) (registry.Package, error)
	Uninstall(pair lang.Pair) error
	Dir() string
}

// Catalog is the remote package index
type Catalog interface {
	Lookup(ctx context.Context, pair lang.Pair) (catalog.Package, error)
	Download(ctx context.Context, pkg catalog.Package, dir string) (string, error)
}

// Resolver resolves, installs and caches local capabilities
type Resolver struct {
	installed InstalledSet
	catalog   Catalog
	local     translation.LocalConfig
	logger    *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	locks   map[lang.Pair]*sync.Mutex
	handles map[lang.Pair]translation.Capability
}

// New creates a resolver. local configures the package runtime; its
// PackagesDir is set to the installed set's directory.
func New(installed InstalledSet, cat Catalog, local *translation.LocalConfig, logger *slog.Logger) *Resolver {
	if local == nil {
		local = translation.DefaultLocalConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := *local
	cfg.PackagesDir = installed.Dir()

	return &Resolver{
		installed: installed,
		catalog:   cat,
		local:     cfg,
		logger:    logger,
		locks:     make(map[lang.Pair]*sync.Mutex),
		handles:   make(map[lang.Pair]translation.Capability),
	}
}

// EnsureCapability returns a capability for pair. Installed pairs resolve
// without touching the catalog. Missing pairs are looked up in the catalog,
// downloaded and installed; concurrent calls for the same pair share one
// installation. Errors are translation.ErrUnsupportedLanguagePair or an
// *translation.InstallationError and are never retried here.
func (r *Resolver) EnsureCapability(ctx context.Context, pair lang.Pair) (translation.Capability, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}

	if pkg, ok := r.installed.Lookup(pair); ok {
		return r.handle(pkg), nil
	}

	return r.do("ensure", pair, func() (translation.Capability, error) {
		// Another flight may have finished installing since the check above
		if pkg, ok := r.installed.Lookup(pair); ok {
			return r.handle(pkg), nil
		}
		return r.install(ctx, pair)
	})
}

// Reinstall downloads pair from the catalog and swaps it in for the
// installed package, if any. The old package is only uninstalled once the
// new archive is on disk, so a failed lookup or download keeps it.
func (r *Resolver) Reinstall(ctx context.Context, pair lang.Pair) (translation.Capability, error) {
	if err := validatePair(pair); err != nil {
		return nil, err
	}

	return r.do("reinstall", pair, func() (translation.Capability, error) {
		archivePath, err := r.fetch(ctx, pair)
		if err != nil {
			return nil, err
		}
		defer os.Remove(archivePath)

		r.mu.Lock()
		delete(r.handles, pair)
		r.mu.Unlock()

		if err := r.installed.Uninstall(pair); err != nil {
			return nil, &translation.InstallationError{Pair: pair, Err: fmt.Errorf("uninstall: %w", err)}
		}
		r.logger.Info("uninstalled package for reinstall", "pair", pair.String())
		return r.installArchive(pair, archivePath)
	})
}

// do runs fn once for concurrent callers of the same operation and pair,
// holding the pair's lock so installs and reinstalls never overlap.
func (r *Resolver) do(op string, pair lang.Pair, fn func() (translation.Capability, error)) (translation.Capability, error) {
	v, err, _ := r.group.Do(op+":"+pair.String(), func() (interface{}, error) {
		lock := r.pairLock(pair)
		lock.Lock()
		defer lock.Unlock()
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(translation.Capability), nil
}

func (r *Resolver) pairLock(pair lang.Pair) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[pair]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[pair] = lock
	}
	return lock
}

func (r *Resolver) install(ctx context.Context, pair lang.Pair) (translation.Capability, error) {
	r.logger.Info("package not installed, looking up catalog", "pair", pair.String())

	archivePath, err := r.fetch(ctx, pair)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archivePath)

	return r.installArchive(pair, archivePath)
}

// fetch looks pair up in the catalog and downloads its archive into the
// package directory. The caller removes the archive.
func (r *Resolver) fetch(ctx context.Context, pair lang.Pair) (string, error) {
	entry, err := r.catalog.Lookup(ctx, pair)
	if err != nil {
		if errors.Is(err, translation.ErrUnsupportedLanguagePair) {
			return "", err
		}
		return "", &translation.InstallationError{Pair: pair, Err: err}
	}

	archivePath, err := r.catalog.Download(ctx, entry, r.installed.Dir())
	if err != nil {
		return "", &translation.InstallationError{Pair: pair, Err: err}
	}
	return archivePath, nil
}

func (r *Resolver) installArchive(pair lang.Pair, archivePath string) (translation.Capability, error) {
	pkg, err := r.installed.Install(pair, archivePath)
	if err != nil {
		return nil, &translation.InstallationError{Pair: pair, Err: err}
	}

	r.logger.Info("installed package", "pair", pair.String(), "version", pkg.Version, "path", pkg.Path)
	return r.handle(pkg), nil
}

func (r *Resolver) handle(pkg registry.Package) translation.Capability {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.handles[pkg.Pair]; ok {
		return c
	}
	local := r.local
	c := translation.NewLocal(pkg.Pair, &local)
	r.handles[pkg.Pair] = c
	return c
}

func validatePair(pair lang.Pair) error {
	if pair.Source == pair.Target {
		return fmt.Errorf("%w: %s", translation.ErrUnsupportedLanguagePair, pair)
	}
	for _, code := range []string{pair.Source, pair.Target} {
		if err := lang.ValidateCode(code); err != nil {
			return fmt.Errorf("%w: %v", translation.ErrUnsupportedLanguagePair, err)
		}
	}
	return nil
}
