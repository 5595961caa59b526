package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/agritranslate/internal/catalog"
	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/registry"
)

// InstalledSet lists installed packages
type InstalledSet interface {
	List() []registry.Package
}

// Catalog lists the remote catalog
type Catalog interface {
	Packages(ctx context.Context) ([]catalog.Package, error)
}

// Lister handles listing packages and models
type Lister struct {
	installed InstalledSet
	catalog   Catalog
	client    *openai.Client
	out       io.Writer
}

// NewLister creates a new model lister writing to out
func NewLister(installed InstalledSet, cat Catalog, out io.Writer) *Lister {
	return &Lister{installed: installed, catalog: cat, out: out}
}

// WithOpenAI also lists the chat models available to apiKey
func (l *Lister) WithOpenAI(apiKey string) *Lister {
	if apiKey != "" {
		l.client = openai.NewClient(apiKey)
	}
	return l
}

// ListAvailableModels prints installed packages, then catalog packages
// marking the installed ones, then OpenAI chat models if configured.
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	installed := l.installed.List()
	have := make(map[lang.Pair]bool, len(installed))

	fmt.Fprintln(l.out, "Installed packages:")
	if len(installed) == 0 {
		fmt.Fprintln(l.out, "  No packages installed")
	}
	for _, pkg := range installed {
		have[pkg.Pair] = true
		fmt.Fprintf(l.out, "  %-10s %-8s %s\n", pkg.Pair, pkg.Version, pkg.Path)
	}

	available, err := l.catalog.Packages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	fmt.Fprintln(l.out, "\nCatalog packages:")
	if len(available) == 0 {
		fmt.Fprintln(l.out, "  No packages found")
	}
	for _, pkg := range available {
		mark := ""
		if have[pkg.Pair()] {
			mark = " [installed]"
		}
		fmt.Fprintf(l.out, "  %-10s %-8s %s -> %s%s\n", pkg.Pair(), pkg.PackageVersion, pkg.FromName, pkg.ToName, mark)
	}

	if l.client == nil {
		return nil
	}
	return l.listChatModels(ctx)
}

func (l *Lister) listChatModels(ctx context.Context) error {
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	chatModels := []string{}
	for _, model := range models.Models {
		if strings.HasPrefix(model.ID, "gpt-4") || strings.HasPrefix(model.ID, "gpt-3.5") {
			chatModels = append(chatModels, model.ID)
		}
	}
	sort.Strings(chatModels)

	fmt.Fprintln(l.out, "\nOpenAI chat models (hosted.backend=openai):")
	if len(chatModels) == 0 {
		fmt.Fprintln(l.out, "  No chat models found")
	}
	for _, model := range chatModels {
		fmt.Fprintf(l.out, "  %s\n", model)
	}
	return nil
}
