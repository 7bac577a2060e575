package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"arcseva.org/seva-web/internal/catalog"
)

type productListResponse struct {
	Products []catalog.Product `json:"products"`
	Count    int               `json:"count"`
}

// listProducts answers the catalog as JSON, optionally narrowed by category and a search query.
func (h *SiteHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.load(r, pageLocation(r))
	products = catalog.FilterByCategory(products, strings.TrimSpace(q.Get("category")))
	products = catalog.Search(products, strings.TrimSpace(q.Get("q")))
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, productListResponse{Products: products, Count: len(products)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
