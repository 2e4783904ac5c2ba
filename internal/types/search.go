package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// UnsetLocation is the placeholder shown before a location has been chosen.
const UnsetLocation = "Select Country"

// location labels
const (
	LocationGermany     = "Germany"
	LocationAustria     = "Austria"
	LocationSwitzerland = "Switzerland"
	LocationUSA         = "USA"
	LocationCanada      = "Canada"
	LocationUK          = "UK"
)

var countryCodes = map[string]string{
	LocationGermany:     "DE",
	LocationAustria:     "AT",
	LocationSwitzerland: "CH",
	LocationUSA:         "US",
	LocationCanada:      "CA",
	LocationUK:          "GB",
}

// Locations returns the selectable location labels in display order.
func Locations() []string {
	return []string{
		LocationGermany,
		LocationAustria,
		LocationSwitzerland,
		LocationUSA,
		LocationCanada,
		LocationUK,
	}
}

// CountryCode returns the ISO 3166 alpha-2 code for a location label.
func CountryCode(location string) (string, bool) {
	code, ok := countryCodes[location]
	return code, ok
}

// SearchRequest is a keyword search scoped to one location.
type SearchRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1,unique,dive,notblank"`
	Location string   `json:"location" validate:"required,oneof=Germany Austria Switzerland USA Canada UK"`
}

// Validate checks the request invariants and returns a *ValidationError on failure.
func (r *SearchRequest) Validate() error {
	return toValidationError(validate.Struct(r))
}

// Term joins the keywords into the single free-text phrase job boards accept.
func (r *SearchRequest) Term() string {
	return strings.Join(r.Keywords, ", ")
}

// NormalizeKeywords trims each keyword and drops blanks and repeats, keeping the first occurrence.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		result = append(result, kw)
	}
	return result
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// toValidationError converts validator output into the first failing field.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "(request)", Message: err.Error()}
	}

	fe := verrs[0]
	return &ValidationError{
		Field:   fe.Field(),
		Message: describeTag(fe),
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "printascii":
		return "must contain printable ASCII only"
	case "unique":
		return "must not contain duplicates"
	case "notblank":
		return "must not be blank"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
