package lead

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSales() Submission {
	return Submission{
		FirstName:       "Jane",
		LastName:        "Citizen",
		Email:           "jane@example.com",
		Phone:           "0412345678",
		Address:         "12 Example Street, Geelong",
		PropertyType:    "House",
		AppraisalReason: "Selling",
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	catalog, err := LoadCatalog()
	require.NoError(t, err)
	v, err := NewValidator(catalog)
	require.NoError(t, err)
	return v
}

func TestValidateAcceptsValidSubmission(t *testing.T) {
	v := newTestValidator(t)

	errs, err := v.Validate(KindSales, validSales())
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateEmptySubmission(t *testing.T) {
	v := newTestValidator(t)

	errs, err := v.Validate(KindSales, Submission{})
	require.NoError(t, err)

	assert.Equal(t, "First name is required", errs[FieldFirstName])
	assert.Equal(t, "Last name is required", errs[FieldLastName])
	assert.Equal(t, "Email is required", errs[FieldEmail])
	assert.Equal(t, "Please enter a valid Australian mobile number (starting with 04)", errs[FieldPhone])
	assert.Equal(t, "Property address is required", errs[FieldAddress])
	assert.Equal(t, "Invalid property type", errs[FieldPropertyType])
	assert.Equal(t, "Invalid reason", errs[FieldAppraisalReason])
	assert.NotContains(t, errs, FieldMessage)
}

func TestValidateFieldRules(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name    string
		mutate  func(*Submission)
		field   string
		message string
	}{
		{"short first name", func(s *Submission) { s.FirstName = "J" }, FieldFirstName, "First name must be at least 2 characters"},
		{"long first name", func(s *Submission) { s.FirstName = strings.Repeat("a", 51) }, FieldFirstName, "First name must be less than 50 characters"},
		{"first name digits", func(s *Submission) { s.FirstName = "Jane2" }, FieldFirstName, "Name can only contain letters and spaces"},
		{"last name symbols", func(s *Submission) { s.LastName = "O'Neil" }, FieldLastName, "Name can only contain letters and spaces"},
		{"bad email", func(s *Submission) { s.Email = "not-an-email" }, FieldEmail, "Invalid email"},
		{"long email", func(s *Submission) { s.Email = strings.Repeat("a", 95) + "@example.com" }, FieldEmail, "Email must be less than 100 characters"},
		{"landline", func(s *Submission) { s.Phone = "0398765432" }, FieldPhone, "Please enter a valid Australian mobile number (starting with 04)"},
		{"short mobile", func(s *Submission) { s.Phone = "041234567" }, FieldPhone, "Please enter a valid Australian mobile number (starting with 04)"},
		{"short address", func(s *Submission) { s.Address = "12 A" }, FieldAddress, "Address must be at least 5 characters"},
		{"unknown property type", func(s *Submission) { s.PropertyType = "Castle" }, FieldPropertyType, "Invalid property type"},
		{"unknown reason", func(s *Submission) { s.AppraisalReason = "Boredom" }, FieldAppraisalReason, "Invalid reason"},
		{"long message", func(s *Submission) { s.Message = strings.Repeat("m", 1001) }, FieldMessage, "Message must be less than 1000 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSales()
			tc.mutate(&sub)

			errs, err := v.Validate(KindSales, sub)
			require.NoError(t, err)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tc.message, errs[tc.field])
		})
	}
}

func TestValidateRentalOptions(t *testing.T) {
	v := newTestValidator(t)

	sub := validSales()
	sub.PropertyType = "Land"
	sub.AppraisalReason = "Selling"

	errs, err := v.Validate(KindRental, sub)
	require.NoError(t, err)
	assert.Equal(t, "Invalid property type", errs[FieldPropertyType])
	assert.Equal(t, "Invalid reason", errs[FieldAppraisalReason])

	sub.PropertyType = "Acreage"
	sub.AppraisalReason = "Changing property manager"
	errs, err = v.Validate(KindRental, sub)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateMessageBoundary(t *testing.T) {
	v := newTestValidator(t)

	sub := validSales()
	sub.Message = strings.Repeat("m", 1000)
	errs, err := v.Validate(KindSales, sub)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateUnknownKind(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Validate(Kind("commercial"), validSales())
	require.Error(t, err)
}

func TestFieldErrorsOrdered(t *testing.T) {
	errs := FieldErrors{
		FieldMessage:   "m",
		FieldFirstName: "f",
		FieldPhone:     "p",
	}

	ordered := errs.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, FieldFirstName, ordered[0].Field)
	assert.Equal(t, FieldPhone, ordered[1].Field)
	assert.Equal(t, FieldMessage, ordered[2].Field)
}

func TestRules(t *testing.T) {
	assert.Equal(t, []string{"au_mobile", "required"}, Rules(FieldPhone))
	assert.Equal(t, []string{"omitempty", "max=1000"}, Rules(FieldMessage))
	assert.Empty(t, Rules("nope"))

	rules := Rules(FieldEmail)
	rules[0] = "changed"
	assert.Equal(t, "required", Rules(FieldEmail)[0])
}
