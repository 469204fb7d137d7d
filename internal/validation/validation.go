// Package validation holds the client-side form rules that must pass before
// any request reaches the API.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"social-wallet-client-go/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxPhotoSize caps profile and community photo uploads.
const MaxPhotoSize = 5 * 1024 * 1024

var (
	phonePattern         = regexp.MustCompile(`^\+\d{1,4}\d{10}$`)
	otpPattern           = regexp.MustCompile(`^\d{6}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{9,18}$`)
	ifscPattern          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	usernamePattern      = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)
	unsafeFileChars      = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

	allowedPhotoTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "phone", phonePattern)
	mustRegister(v, "otp", otpPattern)
	mustRegister(v, "accountnumber", accountNumberPattern)
	mustRegister(v, "ifsc", ifscPattern)
	mustRegister(v, "username", usernamePattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// ValidationError is a failed client-side precondition. It never reaches
// the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func Phone(phone string) error {
	if err := validate.Var(phone, "required,phone"); err != nil {
		return newError("phone", "Please enter a valid 10-digit phone number")
	}
	return nil
}

func Otp(code string) error {
	if err := validate.Var(code, "required,otp"); err != nil {
		return newError("otp", "Please enter the 6-digit code sent to your phone")
	}
	return nil
}

func Amount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newError("amount", "Please enter a valid amount")
	}
	return nil
}

// BankDetails reports missing fields first, then a malformed IFSC code, then
// a malformed account number.
func BankDetails(details models.BankDetails) error {
	err := validate.Struct(details)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate bank details: %w", err)
	}

	byField := make(map[string]validator.FieldError, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return newError("bankDetails", "Please fill in all bank details")
		}
		byField[fe.Field()] = fe
	}
	if _, ok := byField["IfscCode"]; ok {
		return newError("ifscCode", "Please enter a valid IFSC code")
	}
	return newError("accountNumber", "Please enter a valid account number")
}

func Registration(form models.Registration) error {
	err := validate.Struct(form)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate registration: %w", err)
		}
		fe := fieldErrs[0]
		switch fe.Field() {
		case "Phone":
			return newError("phone", "Please verify your phone number first")
		case "Name":
			return newError("name", "Please enter your name")
		case "Username":
			return newError("username", "Username must be 3-30 letters, digits, '_' or '.'")
		case "DateOfBirth":
			return newError("dateOfBirth", "Date of birth must be YYYY-MM-DD")
		default:
			return newError(strings.ToLower(fe.Field()), "Invalid value")
		}
	}
	if form.ProfilePhoto != nil {
		return Photo(form.ProfilePhoto)
	}
	return nil
}

func NewCommunity(form models.NewCommunity) error {
	err := validate.Struct(form)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate community: %w", err)
		}
		fe := fieldErrs[0]
		switch fe.Field() {
		case "Name":
			return newError("name", "Please enter a community name (max 60 characters)")
		case "Bio":
			return newError("bio", "Bio must be at most 500 characters")
		default:
			return newError("cost", "Cost must be a number")
		}
	}
	if form.ProfilePhoto != nil {
		return Photo(form.ProfilePhoto)
	}
	return nil
}

func Photo(upload *models.Upload) error {
	if !allowedPhotoTypes[upload.ContentType] {
		return newError("profilePhoto", "Please upload a valid image file (JPEG, PNG, or GIF)")
	}
	if len(upload.Data) > MaxPhotoSize {
		return newError("profilePhoto", "Image size should be less than 5MB")
	}
	return nil
}

// SanitizeFileName replaces every character outside [a-zA-Z0-9.-] with '_'.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}
