package downloads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"

	"coursarr/internal/domain/errs"
	"coursarr/internal/netutil"
	"coursarr/internal/utils/logging"
)

// HTTPFetcher streams a URL straight to disk through the authenticated
// session. Used for direct file links and unprotected progressive streams.
type HTTPFetcher struct{}

// Fetch downloads url into destPath and returns the path written. The body
// streams into a .part file which is renamed only after a full read, so an
// interrupted transfer never leaves a truncated file at the final path.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, session *netutil.Session, destPath string) (string, error) {
	if filepath.Ext(destPath) == "" {
		destPath += urlExt(url)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	resp, err := session.Get(ctx, url)
	if err != nil {
		return "", errs.Network("file fetch", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d fetching %s", errs.ErrAuthExpired, resp.StatusCode, url)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", errs.Network("file fetch", fmt.Errorf("status %d for %s", resp.StatusCode, url))
	}

	partPath := destPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", partPath, err)
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(partPath); rmErr != nil {
			logging.D(2, "Failed removing partial file %q: %v", partPath, rmErr)
		}
		return "", errs.Network("file fetch", err)
	}

	if err := os.Rename(partPath, destPath); err != nil {
		return "", fmt.Errorf("failed finalizing %q: %w", destPath, err)
	}

	logging.D(1, "Fetched %d bytes to %s", written, destPath)
	return destPath, nil
}

// urlExt derives a file extension from the URL path, defaulting to .bin for
// extensionless links.
func urlExt(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return ".bin"
	}
	if ext := filepath.Ext(u.Path); ext != "" {
		return ext
	}
	return ".bin"
}
