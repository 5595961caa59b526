package registry

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"codeberg.org/snonux/agritranslate/internal/lang"
)

const metadataFile = "metadata.json"

// metadata is the subset of a package's metadata.json the registry uses
type metadata struct {
	Pair    lang.Pair
	Version string
}

func readMetadata(pkgDir string) (metadata, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, metadataFile))
	if err != nil {
		return metadata{}, err
	}
	if !gjson.ValidBytes(data) {
		return metadata{}, fmt.Errorf("invalid %s in %s", metadataFile, pkgDir)
	}

	fields := gjson.GetManyBytes(data, "from_code", "to_code", "package_version")
	md := metadata{
		Pair:    lang.NewPair(fields[0].String(), fields[1].String()),
		Version: fields[2].String(),
	}
	if md.Pair.Source == "" || md.Pair.Target == "" {
		return metadata{}, fmt.Errorf("%s in %s has no language codes", metadataFile, pkgDir)
	}
	return md, nil
}

// unpack extracts a zip archive into dest, refusing entries that would land
// outside of it.
func unpack(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open package archive: %w", err)
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("illegal path in package archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s from archive: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// packageRoot finds the directory holding metadata.json inside an unpacked
// archive: either the staging dir itself or its single top-level directory.
func packageRoot(staging string) (string, error) {
	if _, err := os.Stat(filepath.Join(staging, metadataFile)); err == nil {
		return staging, nil
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(staging, e.Name())
		if _, err := os.Stat(filepath.Join(candidate, metadataFile)); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("package archive has no %s", metadataFile)
}
