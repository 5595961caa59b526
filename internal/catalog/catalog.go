// Package catalog reads the remote index of installable offline translation
// packages and downloads package artifacts.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// DefaultIndexURL is the public argospm package index
const DefaultIndexURL = "https://raw.githubusercontent.com/argosopentech/argospm-index/main/index.json"

// Package is one installable entry of the index
type Package struct {
	Code           string   `json:"code"`
	Type           string   `json:"type"`
	FromCode       string   `json:"from_code"`
	FromName       string   `json:"from_name"`
	ToCode         string   `json:"to_code"`
	ToName         string   `json:"to_name"`
	PackageVersion string   `json:"package_version"`
	ArgosVersion   string   `json:"argos_version"`
	Links          []string `json:"links"`
}

// Pair returns the language pair the package translates
func (p Package) Pair() lang.Pair {
	return lang.NewPair(p.FromCode, p.ToCode)
}

// Option configures a Catalog
type Option func(*Catalog)

// WithHTTPClient sets the client used for index and artifact requests
func WithHTTPClient(client *http.Client) Option {
	return func(c *Catalog) {
		if client != nil {
			c.client = client
		}
	}
}

// WithProgress renders download progress bars to w
func WithProgress(w io.Writer) Option {
	return func(c *Catalog) {
		c.progress = w
	}
}

// Catalog is a read-only view of the remote index. The index is fetched on
// first use and kept for the lifetime of the process; a failed fetch is not
// cached so a later call may try again.
type Catalog struct {
	indexURL string
	client   *http.Client
	progress io.Writer

	mu       sync.Mutex
	packages map[lang.Pair]Package
}

// New creates a catalog for the index at indexURL
func New(indexURL string, opts ...Option) *Catalog {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	c := &Catalog{
		indexURL: indexURL,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the package for pair. It fails with
// translation.ErrUnsupportedLanguagePair when the index has no such entry.
func (c *Catalog) Lookup(ctx context.Context, pair lang.Pair) (Package, error) {
	packages, err := c.load(ctx)
	if err != nil {
		return Package{}, err
	}

	pkg, ok := packages[pair]
	if !ok {
		return Package{}, fmt.Errorf("%w: no package for %s in index", translation.ErrUnsupportedLanguagePair, pair)
	}
	return pkg, nil
}

// Packages returns every translate package of the index sorted by pair
func (c *Catalog) Packages(ctx context.Context) ([]Package, error) {
	packages, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]Package, 0, len(packages))
	for _, pkg := range packages {
		list = append(list, pkg)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Pair().String() < list[j].Pair().String()
	})
	return list, nil
}

func (c *Catalog) load(ctx context.Context) (map[lang.Pair]Package, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.packages != nil {
		return c.packages, nil
	}

	packages, err := c.fetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	c.packages = packages
	return packages, nil
}

func (c *Catalog) fetchIndex(ctx context.Context) (map[lang.Pair]Package, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create index request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch package index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("package index returned status %d", resp.StatusCode)
	}

	var entries []Package
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse package index: %w", err)
	}

	packages := make(map[lang.Pair]Package, len(entries))
	for _, pkg := range entries {
		if pkg.Type != "" && pkg.Type != "translate" {
			continue
		}
		pair := pkg.Pair()
		if pair.Source == "" || pair.Target == "" {
			continue
		}
		// First entry wins, matching the index's own preference order
		if _, exists := packages[pair]; !exists {
			packages[pair] = pkg
		}
	}
	return packages, nil
}
