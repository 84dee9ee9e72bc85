package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

const msgPasswordTooLong = "Field cannot be longer than 72 bytes."

var validate = newValidator()

// newValidator reports fields by their form name so messages line up
// with template inputs.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return fmt.Sprintf("Field must be equal to %s.", strings.ToLower(fe.Param()))
	default:
		return "Invalid value."
	}
}

func validateStruct(in any) FieldErrors {
	fe := FieldErrors{}
	err := validate.Struct(in)
	if err == nil {
		return fe
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add("form", err.Error())
		return fe
	}
	for _, e := range verrs {
		fe.Add(e.Field(), fieldMessage(e))
	}
	return fe
}

// ValidateRegistration checks the registration form's declared
// constraints. Uniqueness needs the store and is checked by Register.
func ValidateRegistration(in RegistrationInput) FieldErrors {
	in.normalize()
	fe := validateStruct(in)
	requireNonBlank(fe, "password", in.Password)
	if _, seen := fe["password"]; !seen && len(in.Password) > maxPasswordBytes {
		fe.Add("password", msgPasswordTooLong)
	}
	return fe
}

func ValidateLogin(in LoginInput) FieldErrors {
	in.normalize()
	fe := validateStruct(in)
	requireNonBlank(fe, "password", in.Password)
	return fe
}

// ValidateAccount also checks the picture extension against allowedExt
// (without dots, case-insensitive) when a picture is present.
func ValidateAccount(in AccountInput, allowedExt []string) FieldErrors {
	in.normalize()
	fe := validateStruct(in)
	if in.Picture != nil && !extensionAllowed(in.PictureName, allowedExt) {
		fe.Add("picture", "File does not have an approved extension: "+strings.Join(allowedExt, ", "))
	}
	return fe
}

func ValidatePost(in PostInput) FieldErrors {
	in.normalize()
	return validateStruct(in)
}

// requireNonBlank flags whitespace-only values that passed "required".
func requireNonBlank(fe FieldErrors, field, value string) {
	if _, seen := fe[field]; !seen && strings.TrimSpace(value) == "" {
		fe.Add(field, "This field is required.")
	}
}

func extensionAllowed(name string, allowed []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}
