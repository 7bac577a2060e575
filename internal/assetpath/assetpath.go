// Package assetpath works out how asset-relative links are prefixed on a given page.
package assetpath

import (
	"strings"
)

// NestedMarker is the directory that sits one level below the site root.
const NestedMarker = "/products/"

// ParentPrefix is returned for pages inside NestedMarker.
const ParentPrefix = "../"

// MetaName is the name of the <meta> tag a page can use to declare its asset base.
const MetaName = "asset-base"

// Prefix infers the prefix from the page path: pages under /products/ need to climb one
// directory, everything else resolves from the root. It only recognises that one layout.
func Prefix(pagePath string) string {
	if strings.Contains(pagePath, NestedMarker) {
		return ParentPrefix
	}
	return ""
}

// Resolve picks the asset base for a page. An explicit value configured for the site wins,
// then a base declared by the page itself, then the path heuristic.
func Resolve(explicit, declared *string, pagePath string) string {
	if explicit != nil {
		return normalize(*explicit)
	}
	if declared != nil {
		return normalize(*declared)
	}
	return Prefix(pagePath)
}

// Join prefixes rel with base. Absolute URLs and root-relative paths are returned as is.
func Join(base, rel string) string {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return ""
	}
	if strings.HasPrefix(rel, "/") || strings.Contains(rel, "://") || strings.HasPrefix(rel, "data:") {
		return rel
	}
	return base + strings.TrimPrefix(rel, "./")
}

func normalize(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "./" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
