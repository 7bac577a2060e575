package handlers

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"arcseva.org/seva-web/internal/assetpath"
	"arcseva.org/seva-web/internal/catalog"
	mw "arcseva.org/seva-web/internal/middleware"
	"arcseva.org/seva-web/internal/observability"
	"arcseva.org/seva-web/internal/page"
	"arcseva.org/seva-web/internal/render"
)

const indexPage = "index.html"

// SiteHandlers serves the static site with the catalog rendered into its pages.
type SiteHandlers struct {
	root      fs.FS
	source    page.CatalogSource
	hydrator  *page.Hydrator
	links     render.Links
	assetBase *string
	limiter   *mw.RateLimiter
	assets    http.Handler
}

// SiteOption customises SiteHandlers.
type SiteOption func(*siteOptions)

type siteOptions struct {
	title     string
	assetBase *string
	links     render.Links
	limiter   *mw.RateLimiter
	logger    *zap.Logger
}

// WithSiteTitle sets the suffix of detail page titles.
func WithSiteTitle(title string) SiteOption {
	return func(o *siteOptions) { o.title = title }
}

// WithAssetBase forces the asset prefix for every page.
func WithAssetBase(base *string) SiteOption {
	return func(o *siteOptions) { o.assetBase = base }
}

// WithLinks overrides the generated link targets.
func WithLinks(l render.Links) SiteOption {
	return func(o *siteOptions) { o.links = l }
}

// WithRateLimiter limits the JSON catalog endpoint. A nil limiter disables limiting.
func WithRateLimiter(l *mw.RateLimiter) SiteOption {
	return func(o *siteOptions) { o.limiter = l }
}

// WithLogger sets the logger used outside request scope.
func WithLogger(logger *zap.Logger) SiteOption {
	return func(o *siteOptions) { o.logger = logger }
}

// NewSiteHandlers serves pages and files from root and reads the catalog from source.
func NewSiteHandlers(root fs.FS, source page.CatalogSource, opts ...SiteOption) *SiteHandlers {
	o := siteOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &SiteHandlers{
		root:   root,
		source: source,
		hydrator: page.NewHydrator(source,
			page.WithSiteTitle(o.title),
			page.WithLinks(o.links),
			page.WithLogger(o.logger.Named("page")),
		),
		links:     o.links,
		assetBase: o.assetBase,
		limiter:   o.limiter,
		assets:    mw.AssetsWithCache(root),
	}
}

// Routes registers the site endpoints. The catch-all route must stay last.
func (h *SiteHandlers) Routes(r chi.Router) {
	r.Route("/fragments", func(rt chi.Router) {
		rt.Get("/categories", h.categoriesFragment)
		rt.Get("/products", h.productsFragment)
		rt.Get("/product", h.productFragment)
	})
	r.With(mw.RateLimit(h.limiter)).Get("/api/products", h.listProducts)
	r.Get("/*", h.serve)
	r.Head("/*", h.serve)
}

func (h *SiteHandlers) serve(w http.ResponseWriter, r *http.Request) {
	name, isPage := pageName(r.URL.Path)
	if !isPage {
		if info, err := fs.Stat(h.root, name); err == nil && info.IsDir() {
			target := "/" + name + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		h.assets.ServeHTTP(w, r)
		return
	}

	logger := observability.FromContext(r.Context())
	data, err := fs.ReadFile(h.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		logger.Error("read page", zap.String("page", name), zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		logger.Error("parse page", zap.String("page", name), zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	loc := page.Location{
		URL:       &url.URL{Path: "/" + name, RawQuery: r.URL.RawQuery},
		AssetBase: h.assetBase,
	}
	res := h.hydrator.Hydrate(r.Context(), doc, loc, page.Options{})
	logger.Debug("page hydrated",
		zap.String("page", name),
		zap.Bool("categories", res.Categories),
		zap.Bool("grid", res.Grid),
		zap.Bool("detail", res.Detail),
	)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}

// pageName maps a request path to a file under the site root. The boolean reports whether
// the file is an HTML page to hydrate.
func pageName(p string) (string, bool) {
	clean := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") {
		return strings.TrimPrefix(path.Join(clean, indexPage), "/"), true
	}
	name := strings.TrimPrefix(clean, "/")
	if name == "" {
		return indexPage, true
	}
	return name, strings.EqualFold(path.Ext(name), ".html")
}

// pageLocation is the page a fragment will be swapped into. htmx reports it in
// HX-Current-URL; without it the site root is assumed. The fragment request's own query wins.
func pageLocation(r *http.Request) *url.URL {
	loc := &url.URL{Path: "/"}
	if raw, ok := mw.CurrentURL(r.Context()); ok {
		if u, err := url.Parse(raw); err == nil && u.Path != "" {
			loc = &url.URL{Path: u.Path, RawQuery: u.RawQuery}
		}
	}
	if id := r.URL.Query().Get("id"); id != "" {
		q := loc.Query()
		q.Set("id", id)
		loc.RawQuery = q.Encode()
	}
	return loc
}

func (h *SiteHandlers) fragmentOptions(loc *url.URL) render.Options {
	return render.Options{
		AssetBase: assetpath.Resolve(h.assetBase, nil, loc.Path),
		Links:     h.links,
	}
}

func (h *SiteHandlers) categoriesFragment(w http.ResponseWriter, r *http.Request) {
	loc := pageLocation(r)
	markup, err := render.CategoriesHTML(h.load(r, loc), h.fragmentOptions(loc))
	h.writeFragment(w, r, markup, err)
}

func (h *SiteHandlers) productsFragment(w http.ResponseWriter, r *http.Request) {
	loc := pageLocation(r)
	products := h.load(r, loc)
	if category := r.URL.Query().Get("category"); category != "" {
		products = catalog.FilterByCategory(products, category)
	}
	markup, err := render.GridHTML(products, h.fragmentOptions(loc))
	h.writeFragment(w, r, markup, err)
}

func (h *SiteHandlers) productFragment(w http.ResponseWriter, r *http.Request) {
	loc := pageLocation(r)
	markup, _, err := render.DetailHTML(h.load(r, loc), loc.Query().Get("id"), h.fragmentOptions(loc))
	h.writeFragment(w, r, markup, err)
}

func (h *SiteHandlers) load(r *http.Request, loc *url.URL) []catalog.Product {
	if h.source == nil {
		return []catalog.Product{}
	}
	return h.source.Load(r.Context(), loc)
}

func (h *SiteHandlers) writeFragment(w http.ResponseWriter, r *http.Request, markup string, err error) {
	if err != nil {
		observability.FromContext(r.Context()).Error("render fragment", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "fragment unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "HX-Current-URL")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}
