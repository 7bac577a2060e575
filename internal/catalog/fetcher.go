package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	defaultFetchTimeout = 5 * time.Second
	maxCatalogBytes     = 8 << 20
)

// Fetcher retrieves the raw body of a candidate catalog path, resolved relative to the page
// that is being rendered.
type Fetcher interface {
	Fetch(ctx context.Context, page *url.URL, candidate string) ([]byte, error)
}

// StatusError is returned when the catalog endpoint answers with a non-success status.
type StatusError struct {
	URL  string
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: %s returned status %d", e.URL, e.Code)
}

// HTTPFetcher loads catalog files over HTTP from a site origin.
type HTTPFetcher struct {
	base *url.URL
	http *http.Client
}

// NewHTTPFetcher constructs a fetcher rooted at baseURL. A non-positive timeout uses 5s.
func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	baseURL = strings.TrimSpace(baseURL)
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("catalog: base url %q must be absolute http(s)", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPFetcher{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, page *url.URL, candidate string) ([]byte, error) {
	target, err := f.resolve(page, candidate)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", target, err)
	}
	return body, nil
}

// resolve places the page under the base URL, then resolves the candidate against it the way
// a browser resolves a relative fetch.
func (f *HTTPFetcher) resolve(page *url.URL, candidate string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return "", fmt.Errorf("catalog: parse candidate %q: %w", candidate, err)
	}
	pagePath := "/"
	if page != nil && page.Path != "" {
		pagePath = page.Path
	}
	doc := *f.base
	doc.Path = strings.TrimSuffix(f.base.Path, "/") + "/" + strings.TrimPrefix(pagePath, "/")
	doc.RawPath = ""
	doc.RawQuery = ""
	doc.Fragment = ""
	return doc.ResolveReference(ref).String(), nil
}

// FSFetcher loads catalog files from a site root on a file system. Relative candidates are
// resolved against the page's directory; ".." never climbs above the root.
type FSFetcher struct {
	root fs.FS
}

// NewFSFetcher wraps the provided site root.
func NewFSFetcher(root fs.FS) *FSFetcher {
	return &FSFetcher{root: root}
}

// Fetch implements Fetcher.
func (f *FSFetcher) Fetch(ctx context.Context, page *url.URL, candidate string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil || f.root == nil {
		return nil, errors.New("catalog: file system not configured")
	}
	name, err := ResolveInRoot(page, candidate)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.root, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return data, nil
}

// ResolveInRoot maps a candidate path, relative to page, to an fs.FS name.
func ResolveInRoot(page *url.URL, candidate string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return "", fmt.Errorf("catalog: parse candidate %q: %w", candidate, err)
	}
	if ref.Path == "" {
		return "", fmt.Errorf("catalog: empty candidate path %q", candidate)
	}

	dir := "/"
	if page != nil && page.Path != "" {
		dir = page.Path
		if !strings.HasSuffix(dir, "/") {
			dir = path.Dir(dir)
		}
	}

	var joined string
	if strings.HasPrefix(ref.Path, "/") {
		joined = path.Clean(ref.Path)
	} else {
		joined = path.Join("/", dir, ref.Path)
	}
	name := strings.TrimPrefix(joined, "/")
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("catalog: invalid path %q", candidate)
	}
	return name, nil
}

// NewFetcher picks the catalog transport: HTTP when baseURL is set, the site root otherwise.
func NewFetcher(baseURL string, timeout time.Duration, root fs.FS) (Fetcher, error) {
	if strings.TrimSpace(baseURL) != "" {
		f, err := NewHTTPFetcher(baseURL, timeout)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	if root == nil {
		return nil, errors.New("catalog: no site root or base url configured")
	}
	return NewFSFetcher(root), nil
}
