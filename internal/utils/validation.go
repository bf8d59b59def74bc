package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("coordinates", validateCoordinates)
}

// ValidateStruct runs the struct's validate tags. Used as the final
// guard before a model is persisted.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateCoordinates(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	switch fl.Param() {
	case "lat":
		return value >= -90 && value <= 90
	case "lng":
		return value >= -180 && value <= 180
	}
	return true
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SanitizeString trims whitespace and collapses internal runs of spaces.
func SanitizeString(input string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(input)), " ")
}
