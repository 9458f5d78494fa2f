package account

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/freshmart/storefront/internal/platform/httpx"
)

// MsgAddressFields is shown when an address field is blank.
const MsgAddressFields = "Please fill in all address fields"

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9 ]{12,19}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
)

var paymentMessages = map[string]string{
	"Type":   "Choose Credit Card, Debit Card or PayPal",
	"Name":   "Name on card is required",
	"Number": "Card number must be 12 to 19 digits",
	"Expiry": "Expiry must be MM/YY",
	"CVC":    "CVC must be up to 4 digits",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return cardNumberPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	return v
}

func validateAddress(v *validator.Validate, f *AddressForm) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Street = strings.TrimSpace(f.Street)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.Zip = strings.TrimSpace(f.Zip)
	f.Country = strings.TrimSpace(f.Country)
	if f.Type == "" {
		f.Type = AddressTypes[0]
	}
	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "oneof" {
			return httpx.Invalid("Address type must be Home, Work or Other")
		}
		return httpx.Invalid(MsgAddressFields)
	}
	return nil
}

func validatePayment(v *validator.Validate, f *PaymentForm) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Number = strings.TrimSpace(f.Number)
	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			if msg, ok := paymentMessages[verrs[0].Field()]; ok {
				return httpx.Invalid(msg)
			}
		}
		return httpx.Invalid("Invalid payment method")
	}
	return nil
}

func validatePassword(v *validator.Validate, f PasswordForm) error {
	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "New" && verrs[0].Tag() == "min" {
			return httpx.Invalid("New password must be at least 8 characters")
		}
		return httpx.Invalid("Please fill in all password fields")
	}
	if f.New != f.Confirm {
		return httpx.Invalid("New passwords do not match")
	}
	return nil
}
