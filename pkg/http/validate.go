package http

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"quantity"`
	Message string                 `json:"message,omitempty" example:"quantity is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

var validate = newValidator()

// newValidator reports fields by the name the client sent them under.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ReadAndValidateRequest binds path, query and body into req, applies
// `default` tags and validates. It returns nil when req is valid.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	return ValidateStruct(c.Request().Context(), req)
}

// ValidateStruct validates an already populated request.
func ValidateStruct(ctx context.Context, req interface{}) []ValidationError {
	if err := validate.StructCtx(ctx, req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, describe(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// rule renders the message of a failed tag and names its parameter.
type rule struct {
	format string // field, param
	param  string
}

var rules = map[string]rule{
	"required": {format: "%s is required"},
	"datetime": {format: "%s must be a date formatted as %s", param: "layout"},
	"oneof":    {format: "%s must be one of: %s", param: "options"},
	"gt":       {format: "%s must be greater than %s", param: "value"},
	"gte":      {format: "%s must be greater than or equal to %s", param: "min"},
	"lt":       {format: "%s must be less than %s", param: "value"},
	"lte":      {format: "%s must be less than or equal to %s", param: "max"},
	"min":      {format: "%s must be at least %s", param: "min"},
	"max":      {format: "%s must be at most %s", param: "max"},
}

func describe(fe validator.FieldError) ValidationError {
	ve := ValidationError{
		Code:  "ERR_" + strings.ToUpper(fe.Tag()),
		Field: fe.Field(),
	}

	r, ok := rules[fe.Tag()]
	if !ok {
		ve.Message = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
		return ve
	}

	param := fe.Param()
	switch fe.Tag() {
	case "oneof":
		ve.Message = fmt.Sprintf(r.format, fe.Field(), strings.ReplaceAll(param, " ", ", "))
	case "min", "max":
		ve.Message = fmt.Sprintf(r.format, fe.Field(), param)
		switch fe.Kind() {
		case reflect.String:
			ve.Message += " characters"
		case reflect.Slice, reflect.Map:
			ve.Message += " entries"
		}
	default:
		ve.Message = fmt.Sprintf(r.format, fe.Field(), param)
	}

	if r.param != "" {
		var v interface{} = param
		if fe.Tag() == "oneof" {
			v = strings.Fields(param)
		}
		ve.Params = map[string]interface{}{r.param: v}
	}
	return ve
}
