package auth

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator checks request DTOs against their validate tags and turns
// failures into a *ValidationError with user-facing messages.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("digit", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), func(r rune) bool { return r >= '0' && r <= '9' })
	})
	_ = v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), isSymbol)
	})
	return &Validator{v: v}
}

// isSymbol matches anything outside ASCII letters and digits.
func isSymbol(r rune) bool {
	if r > unicode.MaxASCII {
		return true
	}
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

// Validate returns nil or a *ValidationError.
func (v *Validator) Validate(req any) error {
	err := v.v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	seen := make(map[string]bool)
	for _, fe := range verrs {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Fields = append(out.Fields, FieldError{Field: field, Message: fieldMessage(field, fe.Tag())})
	}
	return out
}

func fieldMessage(field, tag string) string {
	switch field {
	case "username":
		return "Username must be at least 3 characters"
	case "email":
		return "Please enter a valid email address"
	case "password":
		switch tag {
		case "digit":
			return "Password must contain at least one number"
		case "symbol":
			return "Password must contain at least one special character"
		default:
			return "Password must be at least 8 characters"
		}
	case "confirmPassword":
		return "passwords must match"
	case "token":
		return "Invalid reset token"
	}
	return field + " is invalid"
}
