package models

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"codeberg.org/snonux/agritranslate/internal/catalog"
	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/registry"
)

type fakeInstalled []registry.Package

func (f fakeInstalled) List() []registry.Package {
	return f
}

type fakeCatalog struct {
	packages []catalog.Package
	err      error
}

func (f *fakeCatalog) Packages(ctx context.Context) ([]catalog.Package, error) {
	return f.packages, f.err
}

func TestListAvailableModels(t *testing.T) {
	installed := fakeInstalled{
		{Pair: lang.NewPair("en", "hi"), Version: "1.1", Path: "/pkgs/translate-en_hi"},
	}
	cat := &fakeCatalog{packages: []catalog.Package{
		{FromCode: "en", ToCode: "hi", FromName: "English", ToName: "Hindi", PackageVersion: "1.1"},
		{FromCode: "en", ToCode: "ta", FromName: "English", ToName: "Tamil", PackageVersion: "1.0"},
	}}

	var out bytes.Buffer
	if err := NewLister(installed, cat, &out).ListAvailableModels(context.Background()); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	var hi, ta string
	for _, line := range lines {
		if strings.Contains(line, "English -> Hindi") {
			hi = line
		}
		if strings.Contains(line, "English -> Tamil") {
			ta = line
		}
	}
	if !strings.HasSuffix(hi, "[installed]") {
		t.Errorf("Expected hi to be marked installed: %q", hi)
	}
	if strings.Contains(ta, "[installed]") {
		t.Errorf("Expected ta not to be marked installed: %q", ta)
	}
	if !strings.Contains(out.String(), "/pkgs/translate-en_hi") {
		t.Errorf("Installed package missing from output:\n%s", out.String())
	}
}

func TestListAvailableModels_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := NewLister(fakeInstalled{}, &fakeCatalog{}, &out).ListAvailableModels(context.Background()); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}
	if !strings.Contains(out.String(), "No packages installed") || !strings.Contains(out.String(), "No packages found") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestListAvailableModels_CatalogError(t *testing.T) {
	var out bytes.Buffer
	err := NewLister(fakeInstalled{}, &fakeCatalog{err: errors.New("offline")}, &out).ListAvailableModels(context.Background())
	if err == nil {
		t.Error("Expected error when the catalog is unavailable")
	}
	// Installed packages are still printed
	if !strings.Contains(out.String(), "Installed packages:") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestWithOpenAI_NoKey(t *testing.T) {
	l := NewLister(fakeInstalled{}, &fakeCatalog{}, &bytes.Buffer{}).WithOpenAI("")
	if l.client != nil {
		t.Error("Expected no OpenAI client without a key")
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	var out bytes.Buffer
	err := NewLister(fakeInstalled{}, &fakeCatalog{}, &out).WithOpenAI(apiKey).ListAvailableModels(context.Background())
	if err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
