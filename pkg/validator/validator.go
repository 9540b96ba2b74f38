package validator

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	for i, failure := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(failure.Field + " failed on " + failure.Tag)
		if failure.Param != "" {
			b.WriteString("=" + failure.Param)
		}
	}
	return b.String()
}

// rules are the storefront-specific tags registered next to the built-ins.
//
//	notblank  strings must contain a non-space character ("required" accepts "  ")
//	cronspec  a standard five-field cron expression or @descriptor
//	phone     empty, or digits with optional + ( ) - . and spaces, at least 3 digits
var rules = map[string]func(string) bool{
	"notblank": func(s string) bool { return strings.TrimSpace(s) != "" },
	"cronspec": IsCronSpec,
	"phone":    isPhone,
}

// ValidateStruct validates a struct using registered rules. Field names in
// the returned ValidationErrors are the JSON names.
func ValidateStruct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	failures := make(ValidationErrors, len(ve))
	for i, fe := range ve {
		failures[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return failures
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return instance().RegisterValidation(tag, fn)
}

// IsCronSpec reports whether spec parses as a standard five-field cron expression or descriptor.
func IsCronSpec(spec string) bool {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return false
	}
	_, err := cron.ParseStandard(spec)
	return err == nil
}

func isPhone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case strings.ContainsRune(" ()-.", r):
		default:
			return false
		}
	}
	return digits >= 3
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonFieldName)
		for tag, rule := range rules {
			// Non-string fields are left to the built-in tags.
			_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				if fl.Field().Kind() != reflect.String {
					return tag == "notblank"
				}
				return rule(fl.Field().String())
			})
		}
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
