package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

const (
	assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"
	// catalog files are edited in place by the operator
	dataCacheControl = "no-cache"
	dataDir          = "data/"
)

// AssetsWithCache wraps a file server over root and applies Cache-Control, Vary, and ETag
// handling. ETags hash the file contents and are recomputed whenever a file's size or
// modification time changes.
func AssetsWithCache(root fs.FS) http.Handler {
	etags := &etagCache{root: root, entries: map[string]etagEntry{}}
	files := http.FileServer(http.FS(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		w.Header().Set("Vary", "Accept-Encoding")
		if strings.HasPrefix(name, dataDir) {
			w.Header().Set("Cache-Control", dataCacheControl)
		} else {
			w.Header().Set("Cache-Control", assetCacheControl)
		}
		if et := etags.lookup(name); et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

type etagEntry struct {
	size    int64
	modTime time.Time
	tag     string
}

type etagCache struct {
	root    fs.FS
	mu      sync.Mutex
	entries map[string]etagEntry
}

// lookup returns the ETag of name, or "" for directories and missing files.
func (c *etagCache) lookup(name string) string {
	if name == "" {
		return ""
	}
	info, err := fs.Stat(c.root, name)
	if err != nil || info.IsDir() {
		return ""
	}
	c.mu.Lock()
	entry, ok := c.entries[name]
	c.mu.Unlock()
	if ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.tag
	}
	tag, err := fileETag(c.root, name)
	if err != nil {
		return ""
	}
	c.mu.Lock()
	c.entries[name] = etagEntry{size: info.Size(), modTime: info.ModTime(), tag: tag}
	c.mu.Unlock()
	return tag
}

func fileETag(root fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(root, name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, nil
}
