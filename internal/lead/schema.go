package lead

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator"
)

var (
	mobilePattern = regexp.MustCompile(`^04[0-9]{8}$`)
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s]*$`)
)

// form is the validation view of a Submission. Tag order matters: the
// validator stops at the first failing tag per field, and that tag picks
// the message.
type form struct {
	Kind            Kind   `validate:"-"`
	FirstName       string `json:"firstName" validate:"required,min=2,max=50,name_chars"`
	LastName        string `json:"lastName" validate:"required,min=2,max=50,name_chars"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Phone           string `json:"phone" validate:"au_mobile,required"`
	Address         string `json:"address" validate:"required,min=5"`
	PropertyType    string `json:"propertyType" validate:"property_type,required"`
	AppraisalReason string `json:"appraisalReason" validate:"appraisal_reason,required"`
	Message         string `json:"message" validate:"omitempty,max=1000"`
}

// messages maps field -> failing tag -> user-facing message.
var messages = map[string]map[string]string{
	FieldFirstName: {
		"required":   "First name is required",
		"min":        "First name must be at least 2 characters",
		"max":        "First name must be less than 50 characters",
		"name_chars": "Name can only contain letters and spaces",
	},
	FieldLastName: {
		"required":   "Last name is required",
		"min":        "Last name must be at least 2 characters",
		"max":        "Last name must be less than 50 characters",
		"name_chars": "Name can only contain letters and spaces",
	},
	FieldEmail: {
		"required": "Email is required",
		"email":    "Invalid email",
		"max":      "Email must be less than 100 characters",
	},
	FieldPhone: {
		"au_mobile": "Please enter a valid Australian mobile number (starting with 04)",
		"required":  "Phone is required",
	},
	FieldAddress: {
		"required": "Property address is required",
		"min":      "Address must be at least 5 characters",
	},
	FieldPropertyType: {
		"property_type": "Invalid property type",
		"required":      "Property type is required",
	},
	FieldAppraisalReason: {
		"appraisal_reason": "Invalid reason",
		"required":         "Reason is required",
	},
	FieldMessage: {
		"max": "Message must be less than 1000 characters",
	},
}

// Validator checks submissions against the per-form schemas.
type Validator struct {
	validate *validator.Validate
	catalog  *Catalog
}

// NewValidator registers the custom tags against the given catalog.
func NewValidator(catalog *Catalog) (*Validator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("form catalog is required")
	}

	v := &Validator{validate: validator.New(), catalog: catalog}
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"au_mobile":        func(fl validator.FieldLevel) bool { return mobilePattern.MatchString(fl.Field().String()) },
		"name_chars":       func(fl validator.FieldLevel) bool { return namePattern.MatchString(fl.Field().String()) },
		"property_type":    v.choice(func(f *FormSpec) []Option { return f.PropertyTypes }),
		"appraisal_reason": v.choice(func(f *FormSpec) []Option { return f.Reasons }),
	}
	for tag, fn := range custom {
		if err := v.validate.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return v, nil
}

// choice builds a validator that accepts only the catalog options of the
// form being validated.
func (v *Validator) choice(options func(*FormSpec) []Option) validator.Func {
	return func(fl validator.FieldLevel) bool {
		parent := fl.Parent()
		if parent.Kind() == reflect.Ptr {
			parent = parent.Elem()
		}
		kindField := parent.FieldByName("Kind")
		if !kindField.IsValid() {
			return false
		}
		spec := v.catalog.Form(Kind(kindField.String()))
		if spec == nil {
			return false
		}
		return Allows(options(spec), fl.Field().String())
	}
}

// Validate returns the first failing message for each invalid field. An
// empty map means the submission is valid.
func (v *Validator) Validate(kind Kind, sub Submission) (FieldErrors, error) {
	if v.catalog.Form(kind) == nil {
		return nil, fmt.Errorf("unknown form kind: %q", kind)
	}

	f := &form{
		Kind:            kind,
		FirstName:       sub.FirstName,
		LastName:        sub.LastName,
		Email:           sub.Email,
		Phone:           sub.Phone,
		Address:         sub.Address,
		PropertyType:    sub.PropertyType,
		AppraisalReason: sub.AppraisalReason,
		Message:         sub.Message,
	}

	errs := FieldErrors{}
	err := v.validate.Struct(f)
	if err == nil {
		return errs, nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, fmt.Errorf("validate submission: %w", err)
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return errs, nil
}

func message(field, tag string) string {
	if byTag, ok := messages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}

var (
	rulesOnce sync.Once
	rules     map[string][]string
)

// Rules returns the validation tags of a field in evaluation order.
func Rules(field string) []string {
	rulesOnce.Do(func() {
		rules = make(map[string][]string)
		t := reflect.TypeOf(form{})
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			tag := f.Tag.Get("validate")
			if name == "" || tag == "" || tag == "-" {
				continue
			}
			rules[name] = strings.Split(tag, ",")
		}
	})
	return append([]string(nil), rules[field]...)
}
