// Package page fills the catalog containers of a static HTML page.
package page

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arcseva.org/seva-web/internal/assetpath"
	"arcseva.org/seva-web/internal/catalog"
	"arcseva.org/seva-web/internal/render"
)

const indexPage = "index.html"

// Default container selectors present in the site markup.
const (
	CategoriesSelector = "#featured-categories"
	GridSelector       = "#products-grid"
	DetailSelector     = "#product-detail"
	NavLinkSelector    = ".nav-menu a"
)

// CatalogSource loads the catalog as seen from a page.
type CatalogSource interface {
	Load(ctx context.Context, page *url.URL) []catalog.Product
}

// Containers names the selectors of the three render targets and of the navigation links.
type Containers struct {
	Categories string
	Grid       string
	Detail     string
	NavLinks   string
}

// DefaultContainers matches the static site markup.
var DefaultContainers = Containers{
	Categories: CategoriesSelector,
	Grid:       GridSelector,
	Detail:     DetailSelector,
	NavLinks:   NavLinkSelector,
}

// Location identifies the page being rendered.
type Location struct {
	URL *url.URL
	// AssetBase overrides the per-page declaration and the path heuristic when non-nil.
	AssetBase *string
}

// Options tweaks a single Hydrate call.
type Options struct {
	// SkipDetail leaves the detail container untouched, for pages rendered without a query.
	SkipDetail bool
}

// Result reports what Hydrate did to the page.
type Result struct {
	Categories bool
	Grid       bool
	Detail     bool
	// Product is the product shown in the detail view, nil when none matched.
	Product *catalog.Product
	// ActiveNav counts the navigation links marked active for this page.
	ActiveNav int
}

// Hydrator renders the catalog into whichever containers a page contains.
type Hydrator struct {
	source     CatalogSource
	containers Containers
	siteTitle  string
	links      render.Links
	logger     *zap.Logger
}

// HydratorOption customises a Hydrator.
type HydratorOption func(*Hydrator)

// WithContainers overrides the container selectors. Empty fields keep the defaults.
func WithContainers(c Containers) HydratorOption {
	return func(h *Hydrator) {
		if c.Categories != "" {
			h.containers.Categories = c.Categories
		}
		if c.Grid != "" {
			h.containers.Grid = c.Grid
		}
		if c.Detail != "" {
			h.containers.Detail = c.Detail
		}
		if c.NavLinks != "" {
			h.containers.NavLinks = c.NavLinks
		}
	}
}

// WithSiteTitle sets the suffix used for the detail page <title>.
func WithSiteTitle(title string) HydratorOption {
	return func(h *Hydrator) {
		h.siteTitle = strings.TrimSpace(title)
	}
}

// WithLinks overrides the generated link targets.
func WithLinks(l render.Links) HydratorOption {
	return func(h *Hydrator) {
		h.links = l
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger *zap.Logger) HydratorOption {
	return func(h *Hydrator) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHydrator constructs a Hydrator reading the catalog from source.
func NewHydrator(source CatalogSource, opts ...HydratorOption) *Hydrator {
	h := &Hydrator{
		source:     source,
		containers: DefaultContainers,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hydrate attempts all three renders. A render whose container is missing is skipped, and
// each render loads the catalog on its own. Loads run concurrently; the document is only
// modified once they have all finished.
func (h *Hydrator) Hydrate(ctx context.Context, doc *goquery.Document, loc Location, opts Options) Result {
	var result Result
	if doc == nil {
		return result
	}
	pageURL := loc.URL
	if pageURL == nil {
		pageURL = &url.URL{Path: "/"}
	}

	categories := doc.Find(h.containers.Categories).First()
	grid := doc.Find(h.containers.Grid).First()
	detail := doc.Find(h.containers.Detail).First()
	if opts.SkipDetail {
		detail = detail.Slice(0, 0)
	}

	var forCategories, forGrid, forDetail []catalog.Product
	g, gctx := errgroup.WithContext(ctx)
	load := func(sel *goquery.Selection, dst *[]catalog.Product) {
		if sel.Length() == 0 || h.source == nil {
			return
		}
		g.Go(func() error {
			*dst = h.source.Load(gctx, pageURL)
			return nil
		})
	}
	load(categories, &forCategories)
	load(grid, &forGrid)
	load(detail, &forDetail)
	_ = g.Wait()

	renderOpts := render.Options{
		AssetBase: assetpath.Resolve(loc.AssetBase, DeclaredAssetBase(doc), pageURL.Path),
		Links:     h.links,
	}
	logger := h.logger.With(zap.String("page", pageURL.Path))

	if categories.Length() > 0 {
		if err := render.Categories(categories, forCategories, renderOpts); err != nil {
			logger.Error("render categories", zap.Error(err))
		} else {
			result.Categories = true
		}
	}
	if grid.Length() > 0 {
		if err := render.Grid(grid, forGrid, renderOpts); err != nil {
			logger.Error("render product grid", zap.Error(err))
		} else {
			result.Grid = true
		}
	}
	if detail.Length() > 0 {
		p, err := render.Detail(detail, forDetail, pageURL.Query().Get("id"), renderOpts)
		if err != nil {
			logger.Error("render product detail", zap.Error(err))
		} else {
			result.Detail = true
			result.Product = p
			if p != nil {
				h.setTitle(doc, p.Name)
			}
		}
	}
	result.ActiveNav = MarkActiveNav(doc, h.containers.NavLinks, pageURL.Path)
	return result
}

// MarkActiveNav adds the "active" class to the links matched by selector whose href names the
// current page file. A page path ending in "/" is index.html, and an empty href means the
// index page too.
func MarkActiveNav(doc *goquery.Document, selector, pagePath string) int {
	if doc == nil || selector == "" {
		return 0
	}
	current := pagePath[strings.LastIndex(pagePath, "/")+1:]
	if current == "" {
		current = indexPage
	}
	marked := 0
	doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == current || (href == "" && current == indexPage) {
			link.AddClass("active")
			marked++
		}
	})
	return marked
}

// DeclaredAssetBase returns the content of <meta name="asset-base">, or nil when the page
// does not declare one.
func DeclaredAssetBase(doc *goquery.Document) *string {
	meta := doc.Find(`meta[name="` + assetpath.MetaName + `"]`).First()
	if meta.Length() == 0 {
		return nil
	}
	content, ok := meta.Attr("content")
	if !ok {
		return nil
	}
	return &content
}

func (h *Hydrator) setTitle(doc *goquery.Document, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	title := doc.Find("head title").First()
	if title.Length() == 0 {
		return
	}
	if h.siteTitle != "" {
		name += " | " + h.siteTitle
	}
	title.SetText(name)
}
