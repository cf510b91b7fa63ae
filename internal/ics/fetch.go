package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "calview/internal/log"
)

const (
	defaultFetchTimeout = 15 * time.Second
	// maxBodySize caps a single ICS payload.
	maxBodySize = 10 << 20
)

// cacheMeta is the validator pair remembered per URL.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Fetcher downloads ICS payloads with conditional requests. The last good
// body of every URL is kept on disk and served when the remote answers 304
// or fails. Local file paths (or file:// URLs) are read directly.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher caches under cacheDir. An empty cacheDir disables the disk
// cache. A nil client gets a 15s timeout client.
func NewFetcher(cacheDir string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{client: client, cacheDir: cacheDir}
}

// Fetch returns the current payload of src and whether it came from cache.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, bool, error) {
	if src.URL == "" {
		return nil, false, fmt.Errorf("source %s: URL is empty", src.ID)
	}
	if path, ok := localPath(src.URL); ok {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("source %s: %w", src.ID, err)
		}
		return body, false, nil
	}

	dir := f.cachePath(src.URL)
	meta, cached := f.loadCache(dir)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("source %s: %w", src.ID, err)
	}
	if len(cached) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fallback(src, cached, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return f.fallback(src, cached, err)
		}
		f.saveCache(dir, cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			FetchedAt:    time.Now().UTC(),
		}, body)
		return body, false, nil
	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, false, fmt.Errorf("source %s: 304 Not Modified without a cached body", src.ID)
		}
		appLog.Debug("ics not modified, using cache", "source", src.ID)
		return cached, true, nil
	default:
		return f.fallback(src, cached, errors.New(resp.Status))
	}
}

func (f *Fetcher) fallback(src Source, cached []byte, cause error) ([]byte, bool, error) {
	if len(cached) == 0 {
		return nil, false, fmt.Errorf("source %s: %w", src.ID, cause)
	}
	appLog.Error("ics fetch failed, using cached body", cause, "source", src.ID, "url", redactURL(src.URL))
	return cached, true, nil
}

func (f *Fetcher) cachePath(url string) string {
	if f.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCache(dir string) (cacheMeta, []byte) {
	var meta cacheMeta
	if dir == "" {
		return meta, nil
	}
	body, err := os.ReadFile(filepath.Join(dir, "body.ics"))
	if err != nil {
		return meta, nil
	}
	if data, err := os.ReadFile(filepath.Join(dir, "meta.json")); err == nil {
		_ = json.Unmarshal(data, &meta)
	}
	return meta, body
}

// saveCache writes the body before the metadata so validators never
// describe a body that is not on disk.
func (f *Fetcher) saveCache(dir string, meta cacheMeta, body []byte) {
	if dir == "" {
		return
	}
	err := func() error {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
			return err
		}
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
	}()
	if err != nil {
		appLog.Error("ics cache save failed", err, "url", redactURL(meta.URL))
	}
}

func localPath(u string) (string, bool) {
	if rest, ok := strings.CutPrefix(u, "file://"); ok {
		return rest, true
	}
	if strings.Contains(u, "://") {
		return "", false
	}
	return u, true
}

// redactURL keeps scheme and host only; subscription URLs often embed
// private tokens.
func redactURL(u string) string {
	scheme, rest, ok := strings.Cut(u, "://")
	if !ok {
		return "(local file)"
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return scheme + "://" + rest + "/...(redacted)"
}
