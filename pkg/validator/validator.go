package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"go-social-shop/pkg/apperr"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Check validates a struct and folds the first failure into the API error
// taxonomy so services can return it directly.
func Check(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return apperr.Wrap(apperr.ErrValidation,
		fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
}
