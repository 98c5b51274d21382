package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/madfam-org/ticketbooth/internal/services"
)

// Validator checks request payloads with go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the custom token rules registered.
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validators
	validate.RegisterValidation("whole_number", validateWholeNumber)
	validate.RegisterValidation("duration_minutes", validateDurationMinutes)

	return &Validator{validate: validate}
}

// ValidationError describes one failed rule. Errors with an empty Field
// apply to the request as a whole.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		if err.Field == "" {
			messages = append(messages, err.Message)
			continue
		}
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// FlattenedErrors groups validation messages by field.
type FlattenedErrors struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// Flatten groups the errors into form-level and per-field messages.
func (v ValidationErrors) Flatten() FlattenedErrors {
	flat := FlattenedErrors{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{},
	}
	for _, err := range v {
		if err.Field == "" {
			flat.FormErrors = append(flat.FormErrors, err.Message)
			continue
		}
		flat.FieldErrors[err.Field] = append(flat.FieldErrors[err.Field], err.Message)
	}
	return flat
}

// ValidateStruct runs the struct's validate tags.
func (v *Validator) ValidateStruct(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validate.Struct(s)
	if err != nil {
		validatorErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ValidationErrors{{Tag: "invalid", Message: err.Error()}}
		}
		for _, validatorError := range validatorErrors {
			errors = append(errors, ValidationError{
				Field:   validatorError.Field(),
				Tag:     validatorError.Tag(),
				Value:   formatValue(validatorError.Value()),
				Message: getErrorMessage(validatorError),
			})
		}
	}

	return errors
}

func formatValue(value interface{}) string {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return fmt.Sprintf("%v", rv.Interface())
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be positive", err.Field())
	case "whole_number":
		return fmt.Sprintf("%s must be an integer", err.Field())
	case "duration_minutes":
		return fmt.Sprintf("%s must be at most %d", err.Field(), services.MaxExpiresInMinutes)
	default:
		return "Invalid value"
	}
}

// Custom validation functions
func validateWholeNumber(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		value := fl.Field().Float()
		return !math.IsInf(value, 0) && value == math.Trunc(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func validateDurationMinutes(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() <= float64(services.MaxExpiresInMinutes)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() <= services.MaxExpiresInMinutes
	default:
		return false
	}
}

// RequireQueryParam returns the named query parameter or an error when it is
// absent or empty.
func RequireQueryParam(c *gin.Context, param string) (string, error) {
	value := c.Query(param)
	if value == "" {
		return "", fmt.Errorf("%s query parameter is required", param)
	}
	return value, nil
}
