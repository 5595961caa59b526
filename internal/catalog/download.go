package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Download fetches the package artifact into a new temporary file in dir and
// returns its path. Links are tried in index order. The caller owns the file.
func (c *Catalog) Download(ctx context.Context, pkg Package, dir string) (string, error) {
	if len(pkg.Links) == 0 {
		return "", fmt.Errorf("package %s has no download links", pkg.Pair())
	}

	var errs []error
	for _, link := range pkg.Links {
		path, err := c.downloadLink(ctx, pkg, link, dir)
		if err == nil {
			return path, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("failed to download package %s: %w", pkg.Pair(), errors.Join(errs...))
}

func (c *Catalog) downloadLink(ctx context.Context, pkg Package, link, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", link, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s returned status %d", link, resp.StatusCode)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create download directory: %w", err)
		}
	}

	file, err := os.CreateTemp(dir, "package-*.argosmodel")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var dst io.Writer = file
	if c.progress != nil {
		bar := progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", pkg.Pair())),
			progressbar.OptionSetWriter(c.progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(c.progress)
			}),
		)
		dst = io.MultiWriter(file, bar)
	}

	written, err := io.Copy(dst, resp.Body)
	if err != nil {
		os.Remove(file.Name()) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written == 0 {
		os.Remove(file.Name())
		return "", fmt.Errorf("empty artifact from %s", link)
	}

	return file.Name(), nil
}
