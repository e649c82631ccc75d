package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct fields against their `validate` tags.
func Validate(obj interface{}) error {
	return validate.Struct(obj)
}
