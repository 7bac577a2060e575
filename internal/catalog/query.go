package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxFeaturedCategories caps the category summary strip.
const MaxFeaturedCategories = 3

// CategorySummary describes one distinct category of the catalog.
type CategorySummary struct {
	Name  string
	Count int
	// Image is the image of the first product seen in the category.
	Image string
}

// SummarizeCategories returns up to limit distinct, non-empty categories in first-seen order.
// Count covers the whole catalog, not only the products seen before the cap was reached.
func SummarizeCategories(products []Product, limit int) []CategorySummary {
	if limit <= 0 {
		return nil
	}
	index := make(map[string]int, limit)
	out := make([]CategorySummary, 0, limit)
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].Count++
			continue
		}
		if len(out) == limit {
			continue
		}
		index[name] = len(out)
		out = append(out, CategorySummary{Name: name, Count: 1, Image: p.Image})
	}
	return out
}

// FilterByCategory returns products in category. "all" and "" return every product.
func FilterByCategory(products []Product, category string) []Product {
	category = fold(category)
	if category == "" || category == "all" {
		return append([]Product(nil), products...)
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if fold(p.Category) == category {
			out = append(out, p)
		}
	}
	return out
}

// Search matches query case-insensitively against name and description.
func Search(products []Product, query string) []Product {
	query = fold(query)
	if query == "" {
		return append([]Product(nil), products...)
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold(p.Name), query) ||
			strings.Contains(fold(p.Description), query) {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the first product whose id equals id. An empty id never matches.
func Find(products []Product, id string) (Product, bool) {
	if id == "" {
		return Product{}, false
	}
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// fold trims s and applies Unicode case folding. Casers carry state, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
