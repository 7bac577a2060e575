package catalog

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultCandidates lists where the catalog file is looked up, relative to the page, so pages
// at the site root and one directory down both find it.
var DefaultCandidates = []string{
	"data/products.json",
	"./data/products.json",
	"../data/products.json",
}

// Loader fetches the catalog for a page. It never fails: every error path yields an empty
// catalog and a log entry.
type Loader struct {
	fetcher    Fetcher
	candidates []string
	logger     *zap.Logger
}

// NewLoader constructs a Loader. With no candidates, DefaultCandidates is used.
func NewLoader(fetcher Fetcher, logger *zap.Logger, candidates ...string) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleaned := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultCandidates...)
	}
	return &Loader{
		fetcher:    fetcher,
		candidates: cleaned,
		logger:     logger,
	}
}

// Candidates returns a copy of the configured lookup paths.
func (l *Loader) Candidates() []string {
	out := make([]string, len(l.candidates))
	copy(out, l.candidates)
	return out
}

// Load returns the catalog as seen from page. Each call fetches again.
func (l *Loader) Load(ctx context.Context, page *url.URL) []Product {
	if l == nil || l.fetcher == nil {
		return []Product{}
	}
	pagePath := "/"
	if page != nil && page.Path != "" {
		pagePath = page.Path
	}

	products, source, err := FirstSuccess(ctx, l.candidates, func(ctx context.Context, candidate string) ([]Product, error) {
		data, err := l.fetcher.Fetch(ctx, page, candidate)
		if err != nil {
			l.logger.Debug("catalog candidate unavailable",
				zap.String("page", pagePath),
				zap.String("candidate", candidate),
				zap.Error(err))
			return nil, err
		}
		products, err := Decode(data, FormatFor(candidate))
		if err != nil {
			l.logger.Debug("catalog candidate unparseable",
				zap.String("page", pagePath),
				zap.String("candidate", candidate),
				zap.Error(err))
			return nil, err
		}
		return products, nil
	})
	if err != nil {
		l.logger.Warn("catalog unavailable, rendering empty catalog",
			zap.String("page", pagePath),
			zap.Strings("candidates", l.candidates),
			zap.Error(err))
		return []Product{}
	}

	l.logger.Debug("catalog loaded",
		zap.String("page", pagePath),
		zap.String("source", source),
		zap.Int("products", len(products)))
	return products
}
