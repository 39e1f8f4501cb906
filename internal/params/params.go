// Package params decodes loosely typed strategy parameters into typed structs.
//
// Structs tag their fields with `param:"name"` for the parameter key,
// `default:"..."` for creasty/defaults and `validate:"..."` for validator rules.
package params

import (
	"errors"
	"fmt"
	"strings"

	"quantlab/internal/engine"
	"quantlab/types"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

const tagName = "param"

var validate = validator.New()

// Decode applies defaults to out, overrides them with p and validates the
// result. Unknown keys are rejected. Every failure wraps engine.ErrInvalidParams.
func Decode(p types.Params, out any) error {
	if err := defaults.Set(out); err != nil {
		return fmt.Errorf("%w: defaults: %v", engine.ErrInvalidParams, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", engine.ErrInvalidParams, err)
	}
	if err := dec.Decode(map[string]any(p)); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrInvalidParams, err)
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", engine.ErrInvalidParams, describe(err))
	}
	return nil
}

// Encode renders a decoded struct back into Params under the same keys.
func Encode(in any) types.Params {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  &out,
	})
	if err != nil {
		return types.Params{}
	}
	if err := dec.Decode(in); err != nil {
		return types.Params{}
	}
	return types.Params(out)
}

func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
