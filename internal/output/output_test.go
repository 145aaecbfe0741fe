package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func salesSchema(t *testing.T) *FormSchema {
	t.Helper()
	schema, err := NewFormSchema(lead.MustCatalog(), lead.KindSales)
	require.NoError(t, err)
	return schema
}

func TestNewFormSchema(t *testing.T) {
	schema := salesSchema(t)

	assert.Equal(t, "Property Appraisal", schema.Title)
	require.Len(t, schema.Fields, len(lead.FieldOrder))

	var phone, reason FieldSchema
	for _, field := range schema.Fields {
		switch field.Name {
		case lead.FieldPhone:
			phone = field
		case lead.FieldAppraisalReason:
			reason = field
		}
	}
	assert.Equal(t, []string{"au_mobile", "required"}, phone.Rules)
	assert.Empty(t, phone.Options)
	assert.True(t, lead.Allows(reason.Options, "Curious"))

	_, err := NewFormSchema(lead.MustCatalog(), lead.Kind("commercial"))
	require.Error(t, err)
}

func TestFormatters(t *testing.T) {
	schema := salesSchema(t)

	table, err := NewFormatter(FormatTable).FormatSchema(schema)
	require.NoError(t, err)
	assert.Contains(t, table, "Property Appraisal (sales)")
	assert.Contains(t, table, "Selling (Planning to Sell)")

	md, err := NewFormatter(FormatMarkdown).FormatSchema(schema)
	require.NoError(t, err)
	assert.Contains(t, md, "| Field | Label | Input | Rules | Options |")
	assert.Contains(t, md, "| phone |")

	js, err := NewFormatter(FormatJSON).FormatSchema(schema)
	require.NoError(t, err)
	var decoded FormSchema
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	assert.Equal(t, lead.KindSales, decoded.Kind)
}

func TestFormatSchemaList(t *testing.T) {
	rental, err := NewFormSchema(lead.MustCatalog(), lead.KindRental)
	require.NoError(t, err)

	rendered, err := FormatSchemaList(FormatJSON, []*FormSchema{salesSchema(t), rental})
	require.NoError(t, err)
	assert.Contains(t, rendered, `"kind": "rental"`)

	rendered, err = FormatSchemaList(FormatMarkdown, []*FormSchema{salesSchema(t), nil, rental})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(rendered, "## "))
}

func TestFormatReport(t *testing.T) {
	sub := lead.Submission{FirstName: "<b>Jo</b>", Phone: "123"}
	errs := lead.FieldErrors{
		lead.FieldPhone:     "Please enter a valid Australian mobile number (starting with 04)",
		lead.FieldFirstName: "First name must be at least 2 characters",
	}
	report := NewReport(lead.KindRental, sub, errs)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, lead.FieldFirstName, report.Errors[0].Field)
	assert.Equal(t, "Jo", report.Sanitized.FirstName)

	table, err := NewFormatter(FormatTable).FormatReport(report)
	require.NoError(t, err)
	assert.Contains(t, table, "invalid (2)")
	assert.Contains(t, table, "starting with 04")

	md, err := NewFormatter(FormatMarkdown).FormatReport(report)
	require.NoError(t, err)
	assert.Contains(t, md, "**Status**: invalid (2)")

	valid := NewReport(lead.KindSales, lead.Submission{}, nil)
	md, err = NewFormatter(FormatMarkdown).FormatReport(valid)
	require.NoError(t, err)
	assert.Contains(t, md, "**Status**: valid")
	assert.NotContains(t, md, "| Field | Error |")
}

func TestMarkdownEscaping(t *testing.T) {
	assert.Equal(t, `a \| b`, escapeMarkdownCell("a | b"))
}
