package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Product is a single catalog entry as read from the static data file.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// Price keeps the literal numeric text from the file so it is never reformatted.
	Price          string   `json:"price"`
	Image          string   `json:"image"`
	Packaging      string   `json:"packaging,omitempty"`
	MOQ            string   `json:"moq,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
}

// Format identifies the encoding of a catalog file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the decoder from the candidate's extension. Anything that is not
// .yaml/.yml is treated as JSON.
func FormatFor(candidate string) Format {
	if i := strings.IndexAny(candidate, "?#"); i >= 0 {
		candidate = candidate[:i]
	}
	switch strings.ToLower(path.Ext(candidate)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a catalog body. The body may be a bare list of products or an object
// holding the list under "products". Entries that are not objects are skipped.
func Decode(data []byte, format Format) ([]Product, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if format == FormatYAML {
		return decodeYAML(data)
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) ([]Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, errors.New("catalog: decode json: empty body")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapped struct {
			Products *[]json.RawMessage `json:"products"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil || wrapped.Products == nil {
			return nil, fmt.Errorf("catalog: decode json: %w", err)
		}
		entries = *wrapped.Products
	}

	products := make([]Product, 0, len(entries))
	for _, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		var raw rawProduct
		if err := json.Unmarshal(entry, &raw); err != nil {
			continue
		}
		products = append(products, raw.product())
	}
	return products, nil
}

func decodeYAML(data []byte) ([]Product, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("catalog: decode yaml: empty document")
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind == yaml.MappingNode {
		root = mappingValue(root, "products")
	}
	if root == nil || root.Kind != yaml.SequenceNode {
		return nil, errors.New("catalog: decode yaml: expected a list of products")
	}

	products := make([]Product, 0, len(root.Content))
	for _, item := range root.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.MappingNode {
			continue
		}
		var raw rawProduct
		if err := item.Decode(&raw); err != nil {
			continue
		}
		products = append(products, raw.product())
	}
	return products, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return resolveAlias(node.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// rawProduct mirrors the file schema with lenient field types.
type rawProduct struct {
	ID             identifier `json:"id" yaml:"id"`
	Name           scalar `json:"name" yaml:"name"`
	Category       scalar `json:"category" yaml:"category"`
	Description    scalar `json:"description" yaml:"description"`
	Price          scalar `json:"price" yaml:"price"`
	Image          scalar `json:"image" yaml:"image"`
	Packaging      scalar `json:"packaging" yaml:"packaging"`
	MOQ            scalar `json:"moq" yaml:"moq"`
	Certifications labels `json:"certifications" yaml:"certifications"`
}

func (r rawProduct) product() Product {
	return Product{
		ID:             strings.TrimSpace(string(r.ID)),
		Name:           strings.TrimSpace(string(r.Name)),
		Category:       strings.TrimSpace(string(r.Category)),
		Description:    strings.TrimSpace(string(r.Description)),
		Price:          strings.TrimSpace(string(r.Price)),
		Image:          strings.TrimSpace(string(r.Image)),
		Packaging:      strings.TrimSpace(string(r.Packaging)),
		MOQ:            strings.TrimSpace(string(r.MOQ)),
		Certifications: []string(r.Certifications),
	}
}

// identifier is a scalar whose integral numbers are written without a fraction or exponent,
// so 7, 7.0 and 7e0 all compare equal to the query value "7". Strings are kept as written.
type identifier string

// maxExactInteger bounds the integers a float64 holds exactly.
const maxExactInteger = 1 << 53

func (id *identifier) UnmarshalJSON(b []byte) error {
	var s scalar
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '"' {
		*id = identifier(canonicalNumber(string(s)))
		return nil
	}
	*id = identifier(s)
	return nil
}

func (id *identifier) UnmarshalYAML(node *yaml.Node) error {
	var s scalar
	if err := s.UnmarshalYAML(node); err != nil {
		return err
	}
	node = resolveAlias(node)
	if node != nil && node.Kind == yaml.ScalarNode && (node.Tag == "!!float" || node.Tag == "!!int") {
		*id = identifier(canonicalNumber(string(s)))
		return nil
	}
	*id = identifier(s)
	return nil
}

// canonicalNumber rewrites an integral numeric literal as a plain integer. Anything else,
// including integers too large to be exact, is returned unchanged.
func canonicalNumber(literal string) string {
	literal = strings.TrimSpace(literal)
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return literal
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactInteger {
		return literal
	}
	return strconv.FormatInt(int64(f), 10)
}

// scalar accepts strings, numbers and booleans verbatim. Null, objects and lists become "".
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(v)
	case b[0] == '{', b[0] == '[':
		*s = ""
	default:
		*s = scalar(b)
	}
	return nil
}

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = scalar(node.Value)
	return nil
}

// labels accepts either a list of scalars or a single scalar.
type labels []string

func (l *labels) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []scalar
		if err := json.Unmarshal(b, &items); err != nil {
			*l = nil
			return nil
		}
		*l = compactLabels(items)
		return nil
	}
	var one scalar
	if err := one.UnmarshalJSON(b); err != nil {
		return err
	}
	*l = compactLabels([]scalar{one})
	return nil
}

func (l *labels) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node == nil {
		*l = nil
		return nil
	}
	if node.Kind == yaml.SequenceNode {
		items := make([]scalar, len(node.Content))
		for i, child := range node.Content {
			_ = items[i].UnmarshalYAML(child)
		}
		*l = compactLabels(items)
		return nil
	}
	var one scalar
	_ = one.UnmarshalYAML(node)
	*l = compactLabels([]scalar{one})
	return nil
}

func compactLabels(items []scalar) labels {
	out := make(labels, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(string(item)); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
