// Package render writes the product list view as an HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Sternrassler/product-admin/pkg/metrics"
	"github.com/Sternrassler/product-admin/pkg/pagination"
	"github.com/Sternrassler/product-admin/pkg/product"
	"github.com/Sternrassler/product-admin/pkg/view"
)

// Title is the page heading.
const Title = "All Products"

//go:embed templates/products.html
var templateFS embed.FS

// Page is the data handed to the products template.
type Page struct {
	Title        string
	NewPath      string
	State        string
	Error        string
	RetryHref    string
	Empty        bool
	EmptyMessage string
	Rows         []view.Row
	Controls     []pagination.Control
}

// Renderer renders product list pages.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded page template.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/products.html")
	if err != nil {
		return nil, fmt.Errorf("parse products template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// PageFor builds the template data for v. requested is the page the
// caller asked for; a failed view points its retry link there. Values
// below 1 mean the current page.
func PageFor(v *view.ProductListView, requested int) Page {
	p := Page{
		Title:        Title,
		NewPath:      product.NewPath,
		State:        v.State().String(),
		Empty:        v.Empty(),
		EmptyMessage: view.EmptyMessage,
		Rows:         v.Rows(),
		Controls:     v.Controls(),
	}
	retryPage := v.Page()
	if v.State() == view.Failed && requested > 0 {
		retryPage = requested
	}
	p.RetryHref = fmt.Sprintf("?page=%d", retryPage)
	if err := v.Err(); err != nil {
		p.Error = err.Error()
	}
	return p
}

// Render writes the page for v to w. Nothing is written when the template
// fails. requested is passed to PageFor.
func (r *Renderer) Render(w io.Writer, v *view.ProductListView, requested int) error {
	page := PageFor(v, requested)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("render products page: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write products page: %w", err)
	}

	metrics.PageRendersTotal.WithLabelValues("html", page.State).Inc()
	return nil
}
