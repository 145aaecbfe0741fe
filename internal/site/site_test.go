package site

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	catalog, err := lead.LoadCatalog()
	require.NoError(t, err)
	r, err := NewRenderer(catalog)
	require.NoError(t, err)
	return r
}

func TestHome(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Home(&buf))

	html := buf.String()
	assert.Contains(t, html, "Find Your Dream Home")
	assert.Contains(t, html, `href="/property-appraisal"`)
	assert.Contains(t, html, "Wide Range of Properties")
	assert.Contains(t, html, "Flexible Budget Options")
	assert.Contains(t, html, "Expert Guidance")
	assert.Contains(t, html, `<a href="/" class="active">Home</a>`)
}

func TestSalesForm(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Form(&buf, lead.KindSales, nil, nil, nil))

	html := buf.String()
	assert.Contains(t, html, "Property Appraisal Request")
	assert.Contains(t, html, "Get a Free Property Appraisal")
	assert.Contains(t, html, `action="/property-appraisal"`)
	assert.Contains(t, html, `<option value="Selling">Planning to Sell</option>`)
	assert.Contains(t, html, `<option value="Land">Land</option>`)
	assert.Contains(t, html, "Select Property Type")
	assert.Contains(t, html, `placeholder="0412345678"`)
	assert.Contains(t, html, "Request Appraisal")
	assert.Contains(t, html, `name="screen"`)
	assert.NotContains(t, html, `class="banner`)
}

func TestRentalFormOmitsLand(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Form(&buf, lead.KindRental, nil, nil, nil))

	html := buf.String()
	assert.Contains(t, html, "Rental Property Appraisal")
	assert.Contains(t, html, "Looking for a property manager")
	assert.NotContains(t, html, `value="Land"`)
	assert.Contains(t, html, `<a href="/rental-appraisal" class="active">Rental Appraisal</a>`)
}

func TestFormKeepsValuesAndErrors(t *testing.T) {
	r := newTestRenderer(t)

	values := map[string]string{
		lead.FieldFirstName:    "<script>x</script>",
		lead.FieldPropertyType: "Unit",
	}
	errs := lead.FieldErrors{lead.FieldPhone: "Phone is required"}

	var buf bytes.Buffer
	require.NoError(t, r.Form(&buf, lead.KindSales, values, errs, nil))

	html := buf.String()
	assert.Contains(t, html, "Phone is required")
	assert.Contains(t, html, `<option value="Unit" selected>Unit</option>`)
	assert.Contains(t, html, "&lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, html, "<script>x</script>")
}

func TestBanners(t *testing.T) {
	r := newTestRenderer(t)

	assert.Equal(t, "Thank you for your inquiry! We'll get back to you soon.", r.SuccessBanner(lead.KindSales).Message)
	assert.Equal(t, "Thank you for your rental inquiry! We'll contact you soon.", r.SuccessBanner(lead.KindRental).Message)
	assert.Equal(t, "Something went wrong. Please try again later.", ErrorBanner().Message)
	assert.Equal(t, "Too many requests. Please try again later.", RateLimitedBanner().Message)

	var buf bytes.Buffer
	require.NoError(t, r.Form(&buf, lead.KindSales, nil, nil, RateLimitedBanner()))
	assert.Contains(t, buf.String(), "Too many requests. Please try again later.")
	assert.Contains(t, buf.String(), `class="banner rate-limited"`)
	assert.NotContains(t, buf.String(), `class="banner error"`)

	assert.Equal(t, "success", r.SuccessBanner(lead.KindSales).Kind)
	assert.Equal(t, "error", ErrorBanner().Kind)
	assert.Equal(t, "rate-limited", RateLimitedBanner().Kind)
}

func TestUnknownFormKind(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.Error(t, r.Form(&buf, lead.Kind("commercial"), nil, nil, nil))
	assert.Zero(t, buf.Len())
}
