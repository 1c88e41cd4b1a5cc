package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and folds the first failure into a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationErrorf("%s", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return validationErrorf("%s is required", fe.Field())
	case "email":
		return validationErrorf("%s must be a valid email address", fe.Field())
	case "max":
		return validationErrorf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return validationErrorf("%s is invalid", fe.Field())
	}
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return validationErrorf("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}
