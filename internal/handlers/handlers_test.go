package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arcseva.org/seva-web/internal/catalog"
	mw "arcseva.org/seva-web/internal/middleware"
	"arcseva.org/seva-web/internal/testutil"
)

const catalogJSON = `[
  {"id": 7, "name": "Organic Turmeric", "category": "Spices", "description": "Sun dried", "price": 120, "image": "turmeric.jpg"},
  {"id": "8", "name": "Basmati Rice", "category": "Grains", "description": "Aged two years", "price": "95"},
  {"id": 9, "name": "Black Pepper", "category": "Spices", "description": "Whole corns", "price": 300}
]`

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html": {Data: []byte(`<html><head><title>Home</title></head><body>
<section id="featured-categories"><p>Loading...</p></section></body></html>`)},
		"products/index.html": {Data: []byte(`<html><head><title>Products</title></head><body>
<div id="products-grid"></div></body></html>`)},
		"products/product-detail.html": {Data: []byte(`<html><head><title>Product</title></head><body>
<section id="product-detail"></section></body></html>`)},
		"contact.html":          {Data: []byte(`<html><head><title>Contact</title></head><body><form></form></body></html>`)},
		"data/products.json":    {Data: []byte(catalogJSON)},
		"assets/css/styles.css": {Data: []byte("body{}")},
	}
}

func newTestRouter(t *testing.T, root fstest.MapFS, opts ...SiteOption) http.Handler {
	t.Helper()
	loader := catalog.NewLoader(catalog.NewFSFetcher(root), zap.NewNop())
	opts = append([]SiteOption{WithSiteTitle("ARC International Seva")}, opts...)
	site := NewSiteHandlers(root, loader, opts...)
	return NewRouter(RouterConfig{Logger: zap.NewNop(), Site: site})
}

func get(t *testing.T, h http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestRouter(t, siteFS()), "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHomePageRendersCategories(t *testing.T) {
	rec := get(t, newTestRouter(t, siteFS()), "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	assert.Equal(t, []string{"Spices", "Grains"}, testutil.Texts(doc.Selection, ".category-name"))
	assert.NotContains(t, rec.Body.String(), "Loading...")
	href, _ := doc.Find(".category-card a").First().Attr("href")
	assert.True(t, strings.HasPrefix(href, "products/index.html"), href)
}

func TestProductsPageUsesParentCatalog(t *testing.T) {
	h := newTestRouter(t, siteFS())
	for _, target := range []string{"/products/", "/products/index.html"} {
		rec := get(t, h, target, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		doc := testutil.ParseHTML(t, rec.Body.Bytes())
		assert.Equal(t, 3, doc.Find(".product-card").Length(), target)
		src, _ := doc.Find(".product-card img").First().Attr("src")
		assert.Equal(t, "../assets/images/products/turmeric.jpg", src, target)
	}
}

func TestDirectoryWithoutSlashRedirects(t *testing.T) {
	rec := get(t, newTestRouter(t, siteFS()), "/products", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/products/", rec.Header().Get("Location"))
}

func TestDetailPage(t *testing.T) {
	h := newTestRouter(t, siteFS())

	rec := get(t, h, "/products/product-detail.html?id=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	assert.Equal(t, "Organic Turmeric | ARC International Seva", doc.Find("title").Text())
	assert.Contains(t, doc.Find(".product-price").Text(), "₹ 120")

	rec = get(t, h, "/products/product-detail.html?id=404", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	assert.Equal(t, 1, doc.Find(".product-not-found").Length())
	assert.Equal(t, "Product", doc.Find("title").Text())
}

func TestPageWithoutContainersIsUnchanged(t *testing.T) {
	rec := get(t, newTestRouter(t, siteFS()), "/contact.html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	assert.Equal(t, "Contact", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("form").Length())
}

func TestMissingPage(t *testing.T) {
	rec := get(t, newTestRouter(t, siteFS()), "/nope.html", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMissingCatalogRendersPlaceholders(t *testing.T) {
	root := siteFS()
	delete(root, "data/products.json")
	h := newTestRouter(t, root)

	doc := testutil.ParseHTML(t, get(t, h, "/", nil).Body.Bytes())
	assert.Equal(t, 1, doc.Find(".no-categories").Length())

	doc = testutil.ParseHTML(t, get(t, h, "/products/index.html", nil).Body.Bytes())
	assert.Equal(t, 1, doc.Find(".no-products").Length())
	assert.Contains(t, doc.Find(".no-products code").Text(), "data/products.json")
}

func TestStaticFilesCarryETag(t *testing.T) {
	rec := get(t, newTestRouter(t, siteFS()), "/assets/css/styles.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestFragmentsFollowCurrentURL(t *testing.T) {
	h := newTestRouter(t, siteFS())

	rec := get(t, h, "/fragments/products?category=spices", map[string]string{
		"HX-Request":     "true",
		"HX-Current-URL": "http://localhost:8080/products/index.html",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	frag := testutil.ParseFragment(t, rec.Body.String())
	assert.Equal(t, 2, frag.Find(".product-card").Length())
	href, _ := frag.Find(".product-card a").First().Attr("href")
	assert.Equal(t, "../products/product-detail.html?id=7", href)

	rec = get(t, h, "/fragments/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	frag = testutil.ParseFragment(t, rec.Body.String())
	assert.Equal(t, 2, frag.Find(".category-card").Length())
	href, _ = frag.Find(".category-card a").First().Attr("href")
	assert.True(t, strings.HasPrefix(href, "products/index.html"), href)
}

func TestProductFragment(t *testing.T) {
	h := newTestRouter(t, siteFS())
	headers := map[string]string{"HX-Current-URL": "http://localhost/products/product-detail.html?id=9"}

	frag := testutil.ParseFragment(t, get(t, h, "/fragments/product", headers).Body.String())
	assert.Contains(t, frag.Find(".product-title").Text(), "Black Pepper")

	frag = testutil.ParseFragment(t, get(t, h, "/fragments/product?id=8", headers).Body.String())
	assert.Contains(t, frag.Find(".product-title").Text(), "Basmati Rice")

	frag = testutil.ParseFragment(t, get(t, h, "/fragments/product?id=77", headers).Body.String())
	assert.Equal(t, 1, frag.Find(".product-not-found").Length())
}

func TestListProducts(t *testing.T) {
	h := newTestRouter(t, siteFS())

	decode := func(rec *httptest.ResponseRecorder) productListResponse {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var body productListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	all := decode(get(t, h, "/api/products", nil))
	assert.Equal(t, 3, all.Count)

	spices := decode(get(t, h, "/api/products?category=Spices", nil))
	require.Len(t, spices.Products, 2)
	for _, p := range spices.Products {
		assert.Equal(t, "Spices", p.Category)
	}

	found := decode(get(t, h, "/api/products?q=aged", nil))
	require.Len(t, found.Products, 1)
	assert.Equal(t, "8", found.Products[0].ID)

	none := decode(get(t, h, "/api/products?category=Oils", nil))
	assert.Equal(t, 0, none.Count)
	assert.NotNil(t, none.Products)
}

func TestListProductsRateLimited(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	limiter := mw.NewRateLimiter(1, 2, func() time.Time { return now })
	h := newTestRouter(t, siteFS(), WithRateLimiter(limiter))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(t, h, "/api/products", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/api/products", nil).Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/products/index.html", nil).Code, "pages are not limited")
}

func TestPageName(t *testing.T) {
	cases := []struct {
		in     string
		name   string
		isPage bool
	}{
		{"/", "index.html", true},
		{"", "index.html", true},
		{"/products/", "products/index.html", true},
		{"/products/product-detail.html", "products/product-detail.html", true},
		{"/../../etc/passwd", "etc/passwd", false},
		{"/assets/css/styles.css", "assets/css/styles.css", false},
		{"/ABOUT.HTML", "ABOUT.HTML", true},
	}
	for _, tc := range cases {
		name, isPage := pageName(tc.in)
		assert.Equal(t, tc.name, name, tc.in)
		assert.Equal(t, tc.isPage, isPage, tc.in)
	}
}
