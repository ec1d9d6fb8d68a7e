// Package covers downloads remote cover images into a local directory so
// book pages never hot-link third-party image hosts.
package covers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Fetcher caches book cover images on local disk.
type Fetcher struct {
	coversDir  string
	httpClient *http.Client
}

// NewFetcher creates a fetcher storing covers under coversDir.
func NewFetcher(coversDir string) (*Fetcher, error) {
	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}

	return &Fetcher{
		coversDir: coversDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Fetch returns the local path of a book's cover, downloading it first if it
// is not cached yet. An empty imageURL yields an empty path without error.
func (f *Fetcher) Fetch(ctx context.Context, bookID uint, imageURL string) (string, error) {
	if imageURL == "" {
		return "", nil
	}

	filename := f.coverFilename(bookID, imageURL)
	localPath := filepath.Join(f.coversDir, filename)

	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	if err := f.download(ctx, imageURL, localPath); err != nil {
		return "", err
	}

	return localPath, nil
}

// Invalidate removes every cached cover for a book, so the next fetch
// re-downloads it.
func (f *Fetcher) Invalidate(bookID uint) error {
	pattern := filepath.Join(f.coversDir, fmt.Sprintf("cover_%d_*", bookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// coverFilename is unique per (book, URL) so a changed remote URL gets a
// fresh download instead of serving the stale file.
func (f *Fetcher) coverFilename(bookID uint, imageURL string) string {
	hash := sha256.Sum256([]byte(imageURL))
	return fmt.Sprintf("cover_%d_%x.jpg", bookID, hash[:8])
}

func (f *Fetcher) download(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "PageKeeper/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Write to a temp file in the same directory so the final rename is atomic
	tmpFile, err := os.CreateTemp(f.coversDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, localPath)
}

// CoversDir returns the local covers directory.
func (f *Fetcher) CoversDir() string {
	return f.coversDir
}
