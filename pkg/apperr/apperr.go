package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the API error taxonomy. Services wrap these with
// context via Wrap; handlers map them to HTTP status codes with Status.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")
	ErrConflict     = errors.New("already exists")

	// Catalog write invariants
	ErrAttributeNotApplicable = errors.New("attribute is not declared for this product")
	ErrValueMismatch          = errors.New("attribute value does not belong to the attribute")
	ErrInsufficientStock      = errors.New("insufficient stock")

	// Category tree guards
	ErrHasChildren   = errors.New("category has child categories")
	ErrCategoryInUse = errors.New("category is referenced by products")
	ErrInvalidParent = errors.New("cannot move a category under itself or its descendant")
)

// Wrap attaches a human-readable message while keeping the sentinel
// matchable with errors.Is.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAttributeNotApplicable),
		errors.Is(err, ErrValueMismatch),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrHasChildren),
		errors.Is(err, ErrCategoryInUse),
		errors.Is(err, ErrInvalidParent):
		return 400
	default:
		return 500
	}
}
