package lead

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Option is a selectable value with its display label.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// FieldSpec describes how a field is presented.
type FieldSpec struct {
	Name        string `yaml:"name" json:"name"`
	Label       string `yaml:"label" json:"label"`
	Placeholder string `yaml:"placeholder" json:"placeholder"`
	Input       string `yaml:"input" json:"input"`
}

// FormSpec holds the copy and option lists for one form kind.
type FormSpec struct {
	Title         string   `yaml:"title" json:"title"`
	Headline      string   `yaml:"headline" json:"headline"`
	Subheading    string   `yaml:"subheading" json:"subheading,omitempty"`
	Intro         string   `yaml:"intro" json:"intro"`
	Heading       string   `yaml:"heading" json:"heading"`
	Success       string   `yaml:"success" json:"success"`
	InquiryType   string   `yaml:"inquiry_type" json:"inquiry_type,omitempty"`
	PropertyTypes []Option `yaml:"property_types" json:"property_types"`
	Reasons       []Option `yaml:"reasons" json:"reasons"`
}

// Catalog is the parsed form catalog.
type Catalog struct {
	Fields []FieldSpec        `yaml:"fields" json:"fields"`
	Forms  map[Kind]*FormSpec `yaml:"forms" json:"forms"`
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
	catalogErr  error
)

// LoadCatalog returns the embedded catalog, parsing it on first use.
func LoadCatalog() (*Catalog, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = ParseCatalog(catalogYAML)
	})
	return catalog, catalogErr
}

// MustCatalog is LoadCatalog for package-level initialisation; it panics if
// the embedded catalog is malformed.
func MustCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog decodes a catalog document and checks every form kind is present.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse form catalog: %w", err)
	}
	for _, kind := range Kinds {
		spec, ok := c.Forms[kind]
		if !ok || spec == nil {
			return nil, fmt.Errorf("form catalog missing %q form", kind)
		}
		if len(spec.PropertyTypes) == 0 || len(spec.Reasons) == 0 {
			return nil, fmt.Errorf("form catalog %q form has empty option lists", kind)
		}
	}
	return &c, nil
}

// Form returns the spec for a kind, or nil if unknown.
func (c *Catalog) Form(kind Kind) *FormSpec {
	if c == nil {
		return nil
	}
	return c.Forms[kind]
}

// Field returns the presentation spec for a field name.
func (c *Catalog) Field(name string) (FieldSpec, bool) {
	if c == nil {
		return FieldSpec{}, false
	}
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Allows reports whether value is one of the options.
func Allows(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Label returns the display label for value, or value itself.
func Label(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
