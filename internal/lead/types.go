package lead

import (
	"fmt"
	"strings"
)

// Kind identifies which appraisal form a submission came from.
type Kind string

const (
	KindSales  Kind = "sales"
	KindRental Kind = "rental"
)

// Kinds lists every supported form in display order.
var Kinds = []Kind{KindSales, KindRental}

// ParseKind normalizes a form kind from a route or CLI flag.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(KindSales), "property", "property-appraisal":
		return KindSales, nil
	case string(KindRental), "rental-appraisal":
		return KindRental, nil
	default:
		return "", fmt.Errorf("unknown form kind: %q", value)
	}
}

// Submission holds the raw field values of an appraisal request.
type Submission struct {
	FirstName       string `json:"firstName" yaml:"firstName"`
	LastName        string `json:"lastName" yaml:"lastName"`
	Email           string `json:"email" yaml:"email"`
	Phone           string `json:"phone" yaml:"phone"`
	Address         string `json:"address" yaml:"address"`
	PropertyType    string `json:"propertyType" yaml:"propertyType"`
	AppraisalReason string `json:"appraisalReason" yaml:"appraisalReason"`
	Message         string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Field names as they appear in form posts, JSON bodies and email templates.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldAddress         = "address"
	FieldPropertyType    = "propertyType"
	FieldAppraisalReason = "appraisalReason"
	FieldMessage         = "message"
)

// FieldOrder is the order fields are rendered and reported in.
var FieldOrder = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldPropertyType,
	FieldAppraisalReason,
	FieldMessage,
}

// Values returns the submission as a flat field map.
func (s Submission) Values() map[string]string {
	return map[string]string{
		FieldFirstName:       s.FirstName,
		FieldLastName:        s.LastName,
		FieldEmail:           s.Email,
		FieldPhone:           s.Phone,
		FieldAddress:         s.Address,
		FieldPropertyType:    s.PropertyType,
		FieldAppraisalReason: s.AppraisalReason,
		FieldMessage:         s.Message,
	}
}

// SubmissionFromValues builds a submission from a flat field map.
// Unknown keys are ignored.
func SubmissionFromValues(get func(string) string) Submission {
	return Submission{
		FirstName:       get(FieldFirstName),
		LastName:        get(FieldLastName),
		Email:           get(FieldEmail),
		Phone:           get(FieldPhone),
		Address:         get(FieldAddress),
		PropertyType:    get(FieldPropertyType),
		AppraisalReason: get(FieldAppraisalReason),
		Message:         get(FieldMessage),
	}
}

// FieldErrors maps a field name to the first failing rule's message.
type FieldErrors map[string]string

// Ordered returns the errors in FieldOrder.
func (e FieldErrors) Ordered() []FieldError {
	out := make([]FieldError, 0, len(e))
	for _, field := range FieldOrder {
		if msg, ok := e[field]; ok {
			out = append(out, FieldError{Field: field, Message: msg})
		}
	}
	return out
}

// FieldError is a single field/message pair.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
