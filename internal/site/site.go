// Package site renders the marketing pages and appraisal forms.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Brand is shown in page titles.
const Brand = "HayesWinckle"

// Page paths.
const (
	PathHome   = "/"
	PathSales  = "/property-appraisal"
	PathRental = "/rental-appraisal"
)

// Banner messages shown above a form after submission.
const (
	MessageError       = "Something went wrong. Please try again later."
	MessageRateLimited = "Too many requests. Please try again later."
)

// NavItem is one navigation link.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Banner is a status message rendered above a form.
type Banner struct {
	Kind    string
	Message string
}

// FieldView is a form field ready to render.
type FieldView struct {
	Spec    lead.FieldSpec
	Value   string
	Error   string
	Options []lead.Option
}

// FormView is an appraisal form ready to render.
type FormView struct {
	Kind   lead.Kind
	Action string
	Spec   *lead.FormSpec
	Fields []FieldView
	Banner *Banner
}

// PageData is passed to every page template.
type PageData struct {
	Brand string
	Title string
	Nav   []NavItem
	Form  *FormView
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages   map[string]*template.Template
	catalog *lead.Catalog
}

// NewRenderer parses the embedded templates.
func NewRenderer(catalog *lead.Catalog) (*Renderer, error) {
	if catalog == nil {
		return nil, fmt.Errorf("form catalog is required")
	}

	layout, err := template.ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "appraisal"} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		page, err := clone.ParseFS(templatesFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = page
	}

	return &Renderer{pages: pages, catalog: catalog}, nil
}

// PathFor returns the page path of a form kind.
func PathFor(kind lead.Kind) string {
	if kind == lead.KindRental {
		return PathRental
	}
	return PathSales
}

// Home renders the landing page.
func (r *Renderer) Home(w io.Writer) error {
	return r.render(w, "home", PageData{
		Brand: Brand,
		Title: "Find Your Dream Home",
		Nav:   navFor(PathHome),
	})
}

// Form renders an appraisal page. values and errs may be nil for an empty form.
func (r *Renderer) Form(w io.Writer, kind lead.Kind, values map[string]string, errs lead.FieldErrors, banner *Banner) error {
	spec := r.catalog.Form(kind)
	if spec == nil {
		return fmt.Errorf("unknown form kind: %q", kind)
	}

	view := &FormView{
		Kind:   kind,
		Action: PathFor(kind),
		Spec:   spec,
		Banner: banner,
	}
	for _, field := range r.catalog.Fields {
		fv := FieldView{Spec: field, Value: values[field.Name], Error: errs[field.Name]}
		switch field.Name {
		case lead.FieldPropertyType:
			fv.Options = spec.PropertyTypes
		case lead.FieldAppraisalReason:
			fv.Options = spec.Reasons
		}
		view.Fields = append(view.Fields, fv)
	}

	return r.render(w, "appraisal", PageData{
		Brand: Brand,
		Title: spec.Title,
		Nav:   navFor(PathFor(kind)),
		Form:  view,
	})
}

// SuccessBanner returns the thank-you banner for a form.
func (r *Renderer) SuccessBanner(kind lead.Kind) *Banner {
	msg := "Thank you for your inquiry! We'll get back to you soon."
	if spec := r.catalog.Form(kind); spec != nil && spec.Success != "" {
		msg = spec.Success
	}
	return &Banner{Kind: "success", Message: msg}
}

// ErrorBanner returns the generic failure banner.
func ErrorBanner() *Banner {
	return &Banner{Kind: "error", Message: MessageError}
}

// RateLimitedBanner returns the throttled banner.
func RateLimitedBanner() *Banner {
	return &Banner{Kind: "rate-limited", Message: MessageRateLimited}
}

// render buffers the page so a template error never leaves a partial response.
func (r *Renderer) render(w io.Writer, name string, data PageData) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func navFor(active string) []NavItem {
	items := []NavItem{
		{Label: "Home", Path: PathHome},
		{Label: "Property Appraisal", Path: PathSales},
		{Label: "Rental Appraisal", Path: PathRental},
	}
	for i := range items {
		items[i].Active = items[i].Path == active
	}
	return items
}
