package auth

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a request struct against its validate tags.
func Validate(req any) error {
	return validate.Struct(req)
}

// FormatValidationErrors turns validator errors into a single readable message
func FormatValidationErrors(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	var messages []string
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldError.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", fieldError.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", fieldError.Field(), fieldError.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", fieldError.Field(), fieldError.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", fieldError.Field(), fieldError.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", fieldError.Field(), fieldError.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fieldError.Field()))
		}
	}
	return strings.Join(messages, "; ")
}
