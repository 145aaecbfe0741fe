package output

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders form schemas and validation reports.
type Formatter interface {
	FormatSchema(schema *FormSchema) (string, error)
	FormatReport(report *Report) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// FormatSchemaList renders several form schemas using the requested format.
func FormatSchemaList(format Format, schemas []*FormSchema) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(schemas, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	formatter := NewFormatter(format)
	rendered := make([]string, 0, len(schemas))
	for _, schema := range schemas {
		if schema == nil {
			continue
		}
		value, err := formatter.FormatSchema(schema)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		rendered = append(rendered, value)
	}

	return strings.Join(rendered, "\n\n"), nil
}
