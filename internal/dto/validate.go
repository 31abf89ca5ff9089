package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags on a request and wraps failures as validation
// errors so callers can map them uniformly.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.NewAppError(400, verrs.Error(), apperrors.ErrValidation)
		}
		return err
	}
	return nil
}
