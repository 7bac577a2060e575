package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"arcseva.org/seva-web/internal/page"
)

type stats struct {
	Pages    int
	Hydrated int
	Copied   int
	// Deferred counts pages whose detail view is left for the server to fill per request.
	Deferred int
}

type prerenderer struct {
	hydrator  *page.Hydrator
	assetBase *string
	logger    *zap.Logger
}

// run mirrors src into outDir, rendering the catalog into every HTML page on the way.
func (p *prerenderer) run(ctx context.Context, src fs.FS, outDir string) (stats, error) {
	var st stats
	err := fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(outDir, filepath.FromSlash(name))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(src, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if !strings.EqualFold(path.Ext(name), ".html") {
			st.Copied++
			return os.WriteFile(target, data, 0o644)
		}

		st.Pages++
		out, touched, deferred, err := p.renderPage(ctx, name, data)
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if touched {
			st.Hydrated++
			p.logger.Debug("page prerendered", zap.String("page", name))
		}
		if deferred {
			st.Deferred++
			p.logger.Warn("product detail needs the web server; the static page keeps its placeholder",
				zap.String("page", name))
		}
		return os.WriteFile(target, out, 0o644)
	})
	return st, err
}

// renderPage also reports whether the page has a detail container, which prerendering
// cannot fill without the request's id.
func (p *prerenderer) renderPage(ctx context.Context, name string, data []byte) ([]byte, bool, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, false, false, err
	}
	deferred := doc.Find(page.DetailSelector).Length() > 0
	res := p.hydrator.Hydrate(ctx, doc, page.Location{
		URL:       &url.URL{Path: "/" + name},
		AssetBase: p.assetBase,
	}, page.Options{SkipDetail: true})
	if !res.Categories && !res.Grid && res.ActiveNav == 0 {
		// untouched pages are copied byte for byte
		return data, false, deferred, nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		return nil, false, false, err
	}
	return buf.Bytes(), true, deferred, nil
}

// within reports whether child is inside parent (or equal to it).
func within(parent, child string) (bool, error) {
	ap, err := filepath.Abs(parent)
	if err != nil {
		return false, err
	}
	ac, err := filepath.Abs(child)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(ap, ac)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}
