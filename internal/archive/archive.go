// Package archive moves directories aside into a timestamped archive folder.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveDir moves dir into archiveRoot as "<name>-<timestamp>" and returns
// the new path. archiveRoot is created if needed.
func ArchiveDir(dir, archiveRoot string) (string, error) {
	// Check if the directory exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}

	// Create archive directory if it doesn't exist
	if err := os.MkdirAll(archiveRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(dir)
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveRoot, fmt.Sprintf("%s-%s", name, timestamp))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveRoot, fmt.Sprintf("%s-%s", name, timestamp))
	}

	if err := os.Rename(dir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive directory: %w", err)
	}

	return archivePath, nil
}
