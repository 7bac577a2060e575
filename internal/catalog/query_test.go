package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProducts() []Product {
	return []Product{
		{ID: "1", Name: "Organic Turmeric", Category: "Spices", Description: "Sun dried turmeric fingers", Image: "turmeric.jpg"},
		{ID: "2", Name: "Basmati Rice", Category: "Grains", Description: "Aged long grain rice", Image: "basmati.jpg"},
		{ID: "3", Name: "Black Pepper", Category: "Spices", Description: "Bold Malabar pepper", Image: "pepper.jpg"},
		{ID: "4", Name: "Jaggery", Category: "Sweeteners", Description: "Cane jaggery blocks"},
		{ID: "5", Name: "Cashew", Category: "Dry Fruits", Description: "W240 grade"},
		{ID: "6", Name: "Mystery", Category: " "},
	}
}

func TestSummarizeCategoriesFirstSeenUniqueCapped(t *testing.T) {
	t.Parallel()

	got := SummarizeCategories(sampleProducts(), MaxFeaturedCategories)

	assert.Equal(t, []CategorySummary{
		{Name: "Spices", Count: 2, Image: "turmeric.jpg"},
		{Name: "Grains", Count: 1, Image: "basmati.jpg"},
		{Name: "Sweeteners", Count: 1, Image: ""},
	}, got)
}

func TestSummarizeCategoriesEdgeCases(t *testing.T) {
	t.Parallel()

	assert.Empty(t, SummarizeCategories(nil, 3))
	assert.Empty(t, SummarizeCategories([]Product{{ID: "1"}, {ID: "2", Category: "  "}}, 3))
	assert.Nil(t, SummarizeCategories(sampleProducts(), 0))
	assert.Len(t, SummarizeCategories(sampleProducts(), 10), 4)
}

func TestFilterByCategory(t *testing.T) {
	t.Parallel()

	products := sampleProducts()
	assert.Len(t, FilterByCategory(products, "all"), len(products))
	assert.Len(t, FilterByCategory(products, ""), len(products))

	spices := FilterByCategory(products, "spices")
	if assert.Len(t, spices, 2) {
		assert.Equal(t, "1", spices[0].ID)
		assert.Equal(t, "3", spices[1].ID)
	}
	assert.Empty(t, FilterByCategory(products, "Oils"))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	products := sampleProducts()
	assert.Len(t, Search(products, "  "), len(products))

	byName := Search(products, "PEPPER")
	if assert.Len(t, byName, 1) {
		assert.Equal(t, "3", byName[0].ID)
	}
	byDescription := Search(products, "long grain")
	if assert.Len(t, byDescription, 1) {
		assert.Equal(t, "2", byDescription[0].ID)
	}

	folded := Search([]Product{{ID: "9", Name: "Gewürz Straße Blend"}}, "STRASSE")
	assert.Len(t, folded, 1, "matching uses Unicode case folding")
}

func TestFind(t *testing.T) {
	t.Parallel()

	products := append(sampleProducts(), Product{ID: "1", Name: "Duplicate"})

	p, ok := Find(products, "1")
	assert.True(t, ok)
	assert.Equal(t, "Organic Turmeric", p.Name, "first match wins")

	_, ok = Find(products, "999")
	assert.False(t, ok)
	_, ok = Find(products, "")
	assert.False(t, ok)
	_, ok = Find(nil, "1")
	assert.False(t, ok)
}
