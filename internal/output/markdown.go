package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatSchema renders a form schema as Markdown.
func (f *MarkdownFormatter) FormatSchema(schema *FormSchema) (string, error) {
	if schema == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (`%s`)\n\n", escapeMarkdownCell(schema.Title), schema.Kind))
	sb.WriteString("| Field | Label | Input | Rules | Options |\n")
	sb.WriteString("|-------|-------|-------|-------|---------|\n")

	for _, field := range schema.Fields {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			escapeMarkdownCell(field.Name),
			escapeMarkdownCell(field.Label),
			escapeMarkdownCell(field.Input),
			escapeMarkdownCell(rulesCell(field.Rules)),
			escapeMarkdownCell(optionsCell(field.Options)),
		))
	}

	return sb.String(), nil
}

// FormatReport renders a validation report as Markdown.
func (f *MarkdownFormatter) FormatReport(report *Report) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s submission\n\n**Status**: %s\n", report.Kind, statusLabel(report)))
	if len(report.Errors) > 0 {
		sb.WriteString("\n| Field | Error |\n")
		sb.WriteString("|-------|-------|\n")
		for _, fe := range report.Errors {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", escapeMarkdownCell(fe.Field), escapeMarkdownCell(fe.Message)))
		}
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
