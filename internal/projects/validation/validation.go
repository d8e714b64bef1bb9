// Package validation turns raw request payloads into validated domain inputs.
// Every function is pure: raw input in, validated input or *domain.ValidationError out.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

const (
	MaxTitleLen       = 255
	MaxSummaryLen     = 5000
	MaxDescriptionLen = 10000
	MaxKeywords       = 20
	MaxKeywordLen     = 100
	MaxEntityLen      = 255
	MaxFileNameLen    = 255
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// check runs the struct rules and folds the result into ve.
func check(ve *domain.ValidationError, s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("body", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Add(fieldPath(fe), message(fe))
	}
}

// fieldPath drops the struct name prefix: "CreateProjectRequest.keywords[0]" -> "keywords[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s character(s)", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at most %s character(s)", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid id"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid (" + fe.Tag() + ")"
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// optionalText maps a missing or blank optional text field to nil.
func optionalText(s *string) *string {
	t := trimPtr(s)
	if t == nil || *t == "" {
		return nil
	}
	return t
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func parseDate(ve *domain.ValidationError, field string, raw *string) *domain.Date {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	d, err := domain.ParseDate(*raw)
	if err != nil {
		ve.Add(field, "must be a date (YYYY-MM-DD or RFC 3339)")
		return nil
	}
	return &d
}

func checkDateOrder(ve *domain.ValidationError, start, end *domain.Date) {
	if start != nil && end != nil && end.Before(start.Time) {
		ve.Add("end_date", "must not be before start_date")
	}
}
