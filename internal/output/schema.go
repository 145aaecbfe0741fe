package output

import (
	"fmt"
	"strings"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

// FieldSchema is one row of a form schema listing.
type FieldSchema struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Input   string        `json:"input"`
	Rules   []string      `json:"rules"`
	Options []lead.Option `json:"options,omitempty"`
}

// FormSchema describes one appraisal form for the CLI.
type FormSchema struct {
	Kind    lead.Kind     `json:"kind"`
	Title   string        `json:"title"`
	Heading string        `json:"heading"`
	Fields  []FieldSchema `json:"fields"`
}

// NewFormSchema builds the schema listing of a form from the catalog.
func NewFormSchema(catalog *lead.Catalog, kind lead.Kind) (*FormSchema, error) {
	spec := catalog.Form(kind)
	if spec == nil {
		return nil, fmt.Errorf("unknown form kind: %q", kind)
	}

	schema := &FormSchema{Kind: kind, Title: spec.Title, Heading: spec.Heading}
	for _, field := range catalog.Fields {
		row := FieldSchema{
			Name:  field.Name,
			Label: field.Label,
			Input: field.Input,
			Rules: lead.Rules(field.Name),
		}
		switch field.Name {
		case lead.FieldPropertyType:
			row.Options = spec.PropertyTypes
		case lead.FieldAppraisalReason:
			row.Options = spec.Reasons
		}
		schema.Fields = append(schema.Fields, row)
	}
	return schema, nil
}

// Report is the outcome of checking one submission.
type Report struct {
	Kind      lead.Kind         `json:"kind"`
	Valid     bool              `json:"valid"`
	Errors    []lead.FieldError `json:"errors,omitempty"`
	Sanitized lead.Submission   `json:"sanitized"`
}

// NewReport pairs validation errors with the sanitized submission.
func NewReport(kind lead.Kind, sub lead.Submission, errs lead.FieldErrors) *Report {
	return &Report{
		Kind:      kind,
		Valid:     len(errs) == 0,
		Errors:    errs.Ordered(),
		Sanitized: lead.SanitizeSubmission(sub),
	}
}

func rulesCell(rules []string) string {
	return strings.Join(rules, ", ")
}

func optionsCell(options []lead.Option) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		if opt.Label != "" && opt.Label != opt.Value {
			parts = append(parts, fmt.Sprintf("%s (%s)", opt.Value, opt.Label))
			continue
		}
		parts = append(parts, opt.Value)
	}
	return strings.Join(parts, ", ")
}

func statusLabel(report *Report) string {
	if report.Valid {
		return "valid"
	}
	return fmt.Sprintf("invalid (%d)", len(report.Errors))
}
