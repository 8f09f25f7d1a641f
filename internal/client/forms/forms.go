// Package forms validates login and register input before it is sent.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names used as FieldErrors keys.
const (
	FieldFullName        = "full_name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

const (
	minLoginPassword    = 6
	minRegisterPassword = 8
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitPattern = regexp.MustCompile(`\d`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
)

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// LoginForm is the input of the login view.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email_simple"`
	Password string `form:"password" validate:"required,min=6"`
}

// RegisterForm is the input of the register view.
type RegisterForm struct {
	FullName        string `form:"full_name" validate:"required,min=2"`
	Email           string `form:"email" validate:"required,email_simple"`
	Password        string `form:"password" validate:"required,min=8,has_digit,has_upper"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

var messages = map[string]map[string]string{
	FieldFullName: {
		"required": "Full name is required.",
		"min":      "Name must be at least 2 characters.",
	},
	FieldEmail: {
		"required":     "Email is required.",
		"email_simple": "Please enter a valid email address.",
	},
	FieldPassword: {
		"required":  "Password is required.",
		"has_digit": "Password must contain at least one number.",
		"has_upper": "Password must contain at least one uppercase letter.",
	},
	FieldConfirmPassword: {
		"required": "Please confirm your password.",
		"eqfield":  "Passwords do not match.",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})

	mustRegister(v, "email_simple", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "has_digit", func(fl validator.FieldLevel) bool {
		return digitPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "has_upper", func(fl validator.FieldLevel) bool {
		return upperPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Normalize trims the name and email. Passwords are kept verbatim.
func (f LoginForm) Normalize() LoginForm {
	f.Email = strings.TrimSpace(f.Email)
	return f
}

func (f RegisterForm) Normalize() RegisterForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	return f
}

// Validate returns FieldErrors, or nil when the form is acceptable.
func (f LoginForm) Validate() error {
	return check(f.Normalize(), minLoginPassword)
}

func (f RegisterForm) Validate() error {
	return check(f.Normalize(), minRegisterPassword)
}

func check(form any, minPassword int) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe.Tag(), minPassword)
	}
	return out
}

func message(field, tag string, minPassword int) string {
	if field == FieldPassword && tag == "min" {
		return fmt.Sprintf("Password must be at least %d characters.", minPassword)
	}
	if m, ok := messages[field][tag]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid.", field)
}
