package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatSchema renders a form schema as a table.
func (f *TableFormatter) FormatSchema(schema *FormSchema) (string, error) {
	if schema == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%s (%s)", schema.Title, schema.Kind))
	t.AppendHeader(table.Row{"Field", "Label", "Input", "Rules", "Options"})

	for _, field := range schema.Fields {
		t.AppendRow(table.Row{
			field.Name,
			field.Label,
			field.Input,
			rulesCell(field.Rules),
			optionsCell(field.Options),
		})
	}

	return t.Render(), nil
}

// FormatReport renders a validation report as a table.
func (f *TableFormatter) FormatReport(report *Report) (string, error) {
	if report == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%s submission: %s", report.Kind, statusLabel(report)))
	t.AppendHeader(table.Row{"Field", "Sanitized", "Error"})

	errs := make(map[string]string, len(report.Errors))
	for _, fe := range report.Errors {
		errs[fe.Field] = fe.Message
	}
	values := report.Sanitized.Values()
	for _, field := range lead.FieldOrder {
		t.AppendRow(table.Row{field, values[field], errs[field]})
	}

	return t.Render(), nil
}
