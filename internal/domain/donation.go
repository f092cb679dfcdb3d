package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DonationRequest is the payload accepted by the initiation endpoint.
// Amount is expressed in minor currency units.
type DonationRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Amount   int64  `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Project  string `json:"project"`
}

// Checkout is the hosted-checkout handle returned by the gateway for a new transaction.
type Checkout struct {
	Reference        string `json:"reference"`
	AccessCode       string `json:"access_code"`
	AuthorizationURL string `json:"authorization_url"`
}

var validate = validator.New()

// Normalize trims whitespace, upper-cases the currency and fills the project placeholder.
func (r *DonationRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Project = strings.TrimSpace(r.Project)
	if r.Project == "" {
		r.Project = DefaultProject
	}
}

// Validate checks required fields, the minimum amount and the currency code.
// The returned error is always a KindValidation *Error.
func (r *DonationRequest) Validate(minAmount int64) error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Tag() == "email" {
					return ValidationError("Invalid email address", err)
				}
			}
		}
		return ValidationError("Missing required fields", err)
	}
	if r.Amount < minAmount {
		return ValidationError("Amount too small", nil)
	}
	if _, err := ParseCurrency(r.Currency); err != nil {
		return ValidationError("Unsupported currency", err)
	}
	return nil
}
