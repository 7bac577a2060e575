package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAcceptsStringAndNumberScalars(t *testing.T) {
	t.Parallel()

	body := []byte(`[
		{"id": 7, "name": "Organic Turmeric", "category": "Spices", "description": "Finger turmeric", "price": 120, "image": "turmeric.jpg"},
		{"id": "8", "name": "Black Pepper", "category": "Spices", "price": 450.50, "moq": 500, "certifications": ["FSSAI", " ", "ISO 22000"]},
		{"id": 9, "name": "Basmati", "price": null, "moq": "1 ton", "certifications": "APEDA", "packaging": {"kind": "bag"}}
	]`)

	products, err := Decode(body, FormatJSON)
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "7", products[0].ID)
	assert.Equal(t, "120", products[0].Price)
	assert.Equal(t, "turmeric.jpg", products[0].Image)
	assert.Empty(t, products[0].Certifications)

	assert.Equal(t, "8", products[1].ID)
	assert.Equal(t, "450.50", products[1].Price, "price literal must not be reformatted")
	assert.Equal(t, "500", products[1].MOQ)
	assert.Equal(t, []string{"FSSAI", "ISO 22000"}, products[1].Certifications)

	assert.Equal(t, "", products[2].Price)
	assert.Equal(t, "1 ton", products[2].MOQ)
	assert.Equal(t, []string{"APEDA"}, products[2].Certifications)
	assert.Equal(t, "", products[2].Packaging)
}

func TestDecodeWrappedAndYAMLMatchBareArray(t *testing.T) {
	t.Parallel()

	bare, err := Decode([]byte(`[{"id":1,"name":"Cumin","category":"Seeds","price":90}]`), FormatJSON)
	require.NoError(t, err)

	wrapped, err := Decode([]byte(`{"products":[{"id":"1","name":"Cumin","category":"Seeds","price":90}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, bare, wrapped)

	yamlBody := []byte("products:\n  - id: 1\n    name: Cumin\n    category: Seeds\n    price: 90\n")
	fromYAML, err := Decode(yamlBody, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, bare, fromYAML)

	list, err := Decode([]byte("- id: 1\n  name: Cumin\n  category: Seeds\n  price: 90\n  certifications: [Organic, ~]\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Organic"}, list[0].Certifications)
}

func TestDecodeSkipsNonObjectEntries(t *testing.T) {
	t.Parallel()

	products, err := Decode([]byte(`[1, "x", null, {"id": 2, "name": "Cardamom"}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cardamom", products[0].Name)
}

func TestDecodeRejectsUnstructuredBodies(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body   string
		format Format
	}{
		"empty":          {body: "", format: FormatJSON},
		"null":           {body: "null", format: FormatJSON},
		"html":           {body: "<!doctype html><html></html>", format: FormatJSON},
		"object":         {body: `{"name":"x"}`, format: FormatJSON},
		"truncated":      {body: `[{"id":1`, format: FormatJSON},
		"yaml scalar":    {body: "just text", format: FormatYAML},
		"yaml empty":     {body: "", format: FormatYAML},
		"yaml no list":   {body: "products: 3\n", format: FormatYAML},
		"yaml malformed": {body: "- id: [1\n", format: FormatYAML},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tc.body), tc.format)
			require.Error(t, err)
		})
	}
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, FormatFor("data/products.json"))
	assert.Equal(t, FormatYAML, FormatFor("../data/products.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("data/products.YML?v=2"))
	assert.Equal(t, FormatJSON, FormatFor("data/products"))
}

func TestDecodeNormalisesIntegralNumericIDs(t *testing.T) {
	t.Parallel()

	body := []byte(`[
		{"id": 7.0, "name": "Turmeric"},
		{"id": 8e0, "name": "Pepper"},
		{"id": 9.5, "name": "Cumin"},
		{"id": "10.0", "name": "Rice"},
		{"id": 12345678901234567890, "name": "Huge"}
	]`)
	products, err := Decode(body, FormatJSON)
	require.NoError(t, err)
	require.Len(t, products, 5)

	assert.Equal(t, "7", products[0].ID)
	assert.Equal(t, "8", products[1].ID)
	assert.Equal(t, "9.5", products[2].ID)
	assert.Equal(t, "10.0", products[3].ID, "string ids are compared as written")
	assert.Equal(t, "12345678901234567890", products[4].ID)

	p, ok := Find(products, "7")
	require.True(t, ok)
	assert.Equal(t, "Turmeric", p.Name)

	yamlProducts, err := Decode([]byte("- id: 7.0\n  name: Turmeric\n- id: '7.0'\n  name: Quoted\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, yamlProducts, 2)
	assert.Equal(t, "7", yamlProducts[0].ID)
	assert.Equal(t, "7.0", yamlProducts[1].ID)
}
