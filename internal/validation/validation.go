// Package validation checks request structs using validator struct tags
// and reports the first failure as a model.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mcoot/arise-roster/internal/model"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json field names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return CheckPassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates s and converts the first failure to a ValidationError
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	return model.NewValidationError(fe.Field(), message(fe))
}

// Email checks a single address; empty is accepted
func Email(field, email string) error {
	if email == "" {
		return nil
	}
	if err := validate.Var(email, "email"); err != nil {
		return model.NewValidationError(field, "must be a valid email address")
	}
	return nil
}

// CheckPassword enforces the password policy: at least six characters
// with an upper-case letter, a lower-case letter and a digit.
func CheckPassword(password string) error {
	if len(password) < MinPasswordLength {
		return model.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return model.NewValidationError("password", "must contain an upper-case letter, a lower-case letter and a number")
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "password":
		if err := CheckPassword(fmt.Sprint(fe.Value())); err != nil {
			var v *model.ValidationError
			if errors.As(err, &v) {
				return v.Message
			}
		}
		return "does not meet the password policy"
	case "role":
		return "must be one of admin, coach, assistant"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
