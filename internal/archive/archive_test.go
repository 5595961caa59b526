package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestArchiveDir(t *testing.T) {
	tmpDir := t.TempDir()

	// Create a package directory with a nested model file
	pkgDir := filepath.Join(tmpDir, "packages", "translate-en_hi-1_1")
	modelDir := filepath.Join(pkgDir, "model")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		t.Fatalf("Failed to create package directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "metadata.json"), []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to create metadata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "model.bin"), []byte("weights"), 0644); err != nil {
		t.Fatalf("Failed to create model file: %v", err)
	}

	archiveRoot := filepath.Join(tmpDir, "archive")
	archivedPath, err := ArchiveDir(pkgDir, archiveRoot)
	if err != nil {
		t.Fatalf("ArchiveDir failed: %v", err)
	}

	if _, err := os.Stat(pkgDir); !os.IsNotExist(err) {
		t.Error("Package directory still exists after archiving")
	}

	if filepath.Dir(archivedPath) != archiveRoot {
		t.Errorf("Expected archive under %s, got %s", archiveRoot, archivedPath)
	}

	// Verify name format: translate-en_hi-1_1-YYYYMMDD-HHMMSS
	name := filepath.Base(archivedPath)
	if !strings.HasPrefix(name, "translate-en_hi-1_1-") {
		t.Errorf("Archived directory name doesn't keep the package name: %s", name)
	}

	if _, err := os.Stat(filepath.Join(archivedPath, "model", "model.bin")); os.IsNotExist(err) {
		t.Error("Model file not found in archive")
	}
}

func TestArchiveDir_NonExistentDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := ArchiveDir(filepath.Join(tmpDir, "nonexistent"), filepath.Join(tmpDir, "archive"))
	if err == nil {
		t.Fatal("Expected error for non-existent directory")
	}

	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestArchiveDir_MultipleArchives(t *testing.T) {
	tmpDir := t.TempDir()
	archiveRoot := filepath.Join(tmpDir, "archive")

	// Archive twice to ensure unique names
	for i := 0; i < 2; i++ {
		pkgDir := filepath.Join(tmpDir, "translate-en_ta")
		if err := os.MkdirAll(pkgDir, 0755); err != nil {
			t.Fatalf("Failed to create package directory: %v", err)
		}

		if i == 1 {
			time.Sleep(10 * time.Millisecond)
		}

		if _, err := ArchiveDir(pkgDir, archiveRoot); err != nil {
			t.Fatalf("ArchiveDir failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(archiveRoot)
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}
	if entries[0].Name() == entries[1].Name() {
		t.Error("Archive names are not unique")
	}
}
