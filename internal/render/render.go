// Package render turns catalog data into page markup for the category strip, the product
// grid and the product detail view.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"arcseva.org/seva-web/internal/assetpath"
	"arcseva.org/seva-web/internal/catalog"
	"arcseva.org/seva-web/internal/format"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("render").ParseFS(templateFS, "templates/*.tmpl"))

const (
	descriptionLimit    = 100
	defaultPackaging    = "Standard"
	defaultMOQ          = "Contact for MOQ"
	defaultCertificates = "N/A"
)

// Links holds the site-relative targets generated links point at.
type Links struct {
	Listing  string
	Detail   string
	Contact  string
	Images   string
	NoImage  string
	DataFile string
}

// DefaultLinks matches the layout of the static site.
var DefaultLinks = Links{
	Listing:  "products/index.html",
	Detail:   "products/product-detail.html",
	Contact:  "contact.html",
	Images:   "assets/images/products/",
	NoImage:  "assets/images/placeholder.svg",
	DataFile: "data/products.json",
}

// Options controls how links are built for the page being rendered.
type Options struct {
	// AssetBase is prepended to every site-relative link, e.g. "../".
	AssetBase string
	Links     Links
}

func (o Options) links() Links {
	l := o.Links
	d := DefaultLinks
	if l.Listing == "" {
		l.Listing = d.Listing
	}
	if l.Detail == "" {
		l.Detail = d.Detail
	}
	if l.Contact == "" {
		l.Contact = d.Contact
	}
	if l.Images == "" {
		l.Images = d.Images
	}
	if l.NoImage == "" {
		l.NoImage = d.NoImage
	}
	if l.DataFile == "" {
		l.DataFile = d.DataFile
	}
	return l
}

func (o Options) link(rel string) string {
	return assetpath.Join(o.AssetBase, rel)
}

func (o Options) image(name string) string {
	l := o.links()
	if name == "" {
		return o.link(l.NoImage)
	}
	return o.link(assetpath.Join(l.Images, name))
}

func (o Options) detailLink(id string) string {
	return o.link(o.links().Detail) + "?" + url.Values{"id": {id}}.Encode()
}

func (o Options) listingLink() string {
	return o.link(o.links().Listing)
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type categoryCard struct {
	Name  string
	Count int
	Image string
	Link  string
}

// CategoriesHTML renders up to three category cards, or a placeholder when the catalog has
// no categories.
func CategoriesHTML(products []catalog.Product, opts Options) (string, error) {
	summaries := catalog.SummarizeCategories(products, catalog.MaxFeaturedCategories)
	cards := make([]categoryCard, 0, len(summaries))
	for _, s := range summaries {
		cards = append(cards, categoryCard{
			Name:  s.Name,
			Count: s.Count,
			Image: opts.image(s.Image),
			Link:  opts.listingLink(),
		})
	}
	return execute("categories", struct{ Cards []categoryCard }{cards})
}

// Categories replaces the container contents with the category summary.
func Categories(container *goquery.Selection, products []catalog.Product, opts Options) error {
	markup, err := CategoriesHTML(products, opts)
	if err != nil {
		return err
	}
	container.SetHtml(markup)
	return nil
}

type productCard struct {
	ID       string
	Name     string
	Category string
	Summary  string
	Price    string
	Image    string
	Link     string
}

// GridHTML renders one card per product in catalog order, or the operator placeholder when
// the catalog is empty.
func GridHTML(products []catalog.Product, opts Options) (string, error) {
	if len(products) == 0 {
		return execute("grid-empty", struct{ DataFile string }{opts.links().DataFile})
	}
	cards := make([]productCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, productCard{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Summary:  format.Truncate(PlainText(p.Description), descriptionLimit),
			Price:    format.Price(p.Price),
			Image:    opts.image(p.Image),
			Link:     opts.detailLink(p.ID),
		})
	}
	return execute("grid", struct{ Cards []productCard }{cards})
}

// Grid appends the product cards to the container. An empty catalog replaces the contents
// with the placeholder instead.
func Grid(container *goquery.Selection, products []catalog.Product, opts Options) error {
	markup, err := GridHTML(products, opts)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		container.SetHtml(markup)
		return nil
	}
	container.AppendHtml(markup)
	return nil
}

type detailView struct {
	ID             string
	Name           string
	Category       string
	Description    template.HTML
	Price          string
	Image          string
	Packaging      string
	MOQ            string
	Certifications string
	ContactLink    string
	BackLink       string
}

// DetailHTML renders the product whose id equals id, or the not-found message. The matched
// product is returned so callers can update page metadata.
func DetailHTML(products []catalog.Product, id string, opts Options) (string, *catalog.Product, error) {
	back := opts.listingLink()
	p, ok := catalog.Find(products, id)
	if !ok {
		markup, err := execute("detail-missing", struct{ BackLink string }{back})
		return markup, nil, err
	}
	markup, err := execute("detail", detailView{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Description:    Markdown(p.Description),
		Price:          format.Price(p.Price),
		Image:          opts.image(p.Image),
		Packaging:      format.OrDefault(p.Packaging, defaultPackaging),
		MOQ:            format.OrDefault(p.MOQ, defaultMOQ),
		Certifications: format.List(p.Certifications, defaultCertificates),
		ContactLink:    opts.link(opts.links().Contact),
		BackLink:       back,
	})
	if err != nil {
		return "", nil, err
	}
	return markup, &p, nil
}

// Detail replaces the container contents with the product detail view.
func Detail(container *goquery.Selection, products []catalog.Product, id string, opts Options) (*catalog.Product, error) {
	markup, p, err := DetailHTML(products, id, opts)
	if err != nil {
		return nil, err
	}
	container.SetHtml(markup)
	return p, nil
}
