package testutil

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateLocales writes a source dictionary to <base>/<source>/<file> and
// returns its path.
func CreateLocales(t *testing.T, base, source, file, content string) string {
	t.Helper()

	path := filepath.Join(base, source, file)
	CreateTestFile(t, path, []byte(content))
	return path
}

// CreatePackageArchive writes a zip archive shaped like an offline
// translation package: a top-level directory holding metadata.json and a
// model file. An empty topDir puts the files at the archive root.
func CreatePackageArchive(t *testing.T, path, topDir, from, to, version string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create archive directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	prefix := ""
	if topDir != "" {
		prefix = topDir + "/"
	}

	files := map[string]string{
		prefix + "metadata.json": fmt.Sprintf(
			`{"package_version": %q, "from_code": %q, "to_code": %q, "type": "translate"}`,
			version, from, to),
		prefix + "model/model.bin": "weights for " + from + "->" + to,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s to archive: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s to archive: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish archive: %v", err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// CompareDirectories compares two directories recursively, including file contents
func CompareDirectories(t *testing.T, dir1, dir2 string) {
	t.Helper()

	err := filepath.Walk(dir1, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Get relative path
		relPath, err := filepath.Rel(dir1, path)
		if err != nil {
			return err
		}

		// Check if corresponding file exists in dir2
		path2 := filepath.Join(dir2, relPath)
		info2, err := os.Stat(path2)
		if err != nil {
			t.Errorf("File missing in second directory: %s", relPath)
			return nil
		}

		// Compare file types
		if info.IsDir() != info2.IsDir() {
			t.Errorf("File type mismatch for %s", relPath)
			return nil
		}

		if !info.IsDir() {
			a, _ := os.ReadFile(path)
			b, _ := os.ReadFile(path2)
			if string(a) != string(b) {
				t.Errorf("File content mismatch for %s", relPath)
			}
		}

		return nil
	})

	if err != nil {
		t.Fatalf("Failed to compare directories: %v", err)
	}
}
