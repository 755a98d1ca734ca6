package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// errorMessages maps validation tags to friendly error messages.
var errorMessages = map[string]string{
	"required": "The field '%s' is required.",
	"min":      "The field '%s' must be at least %s.",
	"max":      "The field '%s' must be at most %s.",
	"lte":      "The field '%s' must be less than or equal to %s.",
	"gte":      "The field '%s' must be greater than or equal to %s.",
	"unique":   "The field '%s' must be unique.",
	"gt":       "The field '%s' must be greater than %s.",
	"lt":       "The field '%s' must be less than %s.",
	"oneof":    "The field '%s' must be one of [%s].",
}

// parseMessage constructs a friendly error message for a failed tag.
func parseMessage(name string, e validator.FieldError) string {
	if msg, ok := errorMessages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, name, e.Param())
		}
		return fmt.Sprintf(msg, name)
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", name, e.Tag())
}

// Struct validates s, a struct or a pointer to one.
func Struct(s any) error {
	return validate.Struct(s)
}

// ValidateStruct validates s and returns friendly error messages keyed by
// field name. Top level fields are named by their json tag, nested fields
// by their namespace. A valid struct yields an empty map.
func ValidateStruct(s any) map[string]string {
	return Messages(s, validate.Struct(s))
}

// Messages converts the validation error err of s into friendly messages.
func Messages(s any, err error) map[string]string {
	out := make(map[string]string)

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return out
	}

	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	for _, e := range errs {
		name := fieldName(t, e)
		out[name] = parseMessage(name, e)
	}
	return out
}

// Join renders messages as a single sorted line.
func Join(messages map[string]string) string {
	keys := make([]string, 0, len(messages))
	for k := range messages {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = messages[k]
	}
	return strings.Join(parts, " ")
}

func fieldName(t reflect.Type, e validator.FieldError) string {
	if t == nil || t.Kind() != reflect.Struct {
		return e.Field()
	}

	ns := strings.TrimPrefix(e.StructNamespace(), t.Name()+".")
	if !strings.ContainsAny(ns, ".[") {
		if field, ok := t.FieldByName(ns); ok {
			if tag := strings.Split(field.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
				return tag
			}
		}
	}
	return e.Field()
}
