package domain

import (
	"fmt"

	"teamspace/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a command or query.
// The returned error wraps errors.ErrValidation.
func Validate(request any) error {
	if err := validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrValidation, err.Error())
	}
	return nil
}
