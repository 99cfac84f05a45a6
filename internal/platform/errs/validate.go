package errs

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Required and NotEmpty are the rules for create and patch input.
var (
	Required = validation.Required.Error("is required")
	NotEmpty = validation.NilOrNotEmpty.Error("cannot be empty")
)

// Check converts the result of validation.ValidateStruct into a
// *ValidationError. A single failing field is named in Field; several are
// joined into Message.
func Check(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return err
		}
		return &ValidationError{Message: err.Error()}
	}
	if len(fields) == 1 {
		for k, v := range fields {
			return &ValidationError{Field: k, Message: v.Error()}
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &ValidationError{Field: keys[0], Message: fields.Error()}
}
