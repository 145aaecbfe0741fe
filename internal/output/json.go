package output

import (
	"encoding/json"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatSchema renders a form schema as JSON.
func (f *JSONFormatter) FormatSchema(schema *FormSchema) (string, error) {
	if schema == nil {
		return "", nil
	}
	return f.marshal(schema)
}

// FormatReport renders a validation report as JSON.
func (f *JSONFormatter) FormatReport(report *Report) (string, error) {
	if report == nil {
		return "", nil
	}
	return f.marshal(report)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
