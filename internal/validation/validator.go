// Package validation wraps a shared go-playground validator with the support
// desk's custom tags and readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobile10Pattern    = regexp.MustCompile(`^[0-9]{10}$`)
	mobileRangePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
	clockTimePattern   = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

func GetValidator() *validator.Validate {
	once.Do(initValidator)
	return validate
}

func initValidator() {
	validate = validator.New()

	// Field names in messages come from the label tag, falling back to json.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister("support_email", matches(emailPattern))
	mustRegister("mobile10", matches(mobile10Pattern))
	mustRegister("mobile_range", matches(mobileRangePattern))
	mustRegister("clock_time", matches(clockTimePattern))
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(strings.TrimSpace(fl.Field().String()))
	}
}

func Struct(v interface{}) error {
	return GetValidator().Struct(v)
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func IsClockTime(s string) bool {
	return clockTimePattern.MatchString(strings.TrimSpace(s))
}

// ParseErrors turns validator errors into user-facing messages, in field order.
func ParseErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	ok := errors.As(err, &validationErrors)
	if !ok {
		return []string{"Unknown error"}
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, prettyError(e))
	}

	return errs
}

// MissingFields returns the labels of fields that failed the required tag.
func MissingFields(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var missing []string
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			missing = append(missing, e.Field())
		}
	}
	return missing
}

// FirstNonRequired returns the label and message of the first failure that
// is not a missing field.
func FirstNonRequired(err error) (field, message string, ok bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", "", false
	}
	for _, e := range validationErrors {
		if e.Tag() != "required" {
			return e.Field(), prettyError(e), true
		}
	}
	return "", "", false
}

func prettyError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "support_email", "email":
		return "Invalid email format"
	case "mobile10":
		return "Mobile number must be 10 digits"
	case "mobile_range":
		return "Invalid mobile number format (should be 10-15 digits)"
	case "clock_time":
		return "Invalid time format. Use HH:MM (24-hour format)"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return e.Error()
	}
}
