package validation

import (
	"encoding/json"

	"github.com/madfam-org/ticketbooth/internal/services"
)

// CreateTokenRequest mirrors the POST /api/tokens body. Pointer fields tell a
// missing value apart from a zero one.
type CreateTokenRequest struct {
	UserID           *string   `json:"userId" validate:"required,min=1"`
	Scopes           *[]string `json:"scopes" validate:"required,min=1"`
	ExpiresInMinutes *float64  `json:"expiresInMinutes" validate:"required,whole_number,gt=0,duration_minutes"`
}

// Messages shown to clients, keyed by field and then by failed rule.
var createTokenMessages = map[string]map[string]string{
	"userId": {
		"required": "userId is required",
		"min":      "userId is required",
		"type":     "userId must be a string",
	},
	"scopes": {
		"required": "At least one scope is required",
		"min":      "At least one scope is required",
		"type":     "scopes must be an array of strings",
	},
	"expiresInMinutes": {
		"required": "expiresInMinutes is required",
		"type":     "expiresInMinutes must be a number",
	},
}

const invalidBodyMessage = "Request body must be a JSON object"

// ValidateCreateTokenInput checks a raw request body. On success the returned
// errors are empty and the input is normalized; on failure the input is the
// zero value.
func (v *Validator) ValidateCreateTokenInput(raw []byte) (services.CreateTokenInput, ValidationErrors) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return services.CreateTokenInput{}, ValidationErrors{{Tag: "json", Message: invalidBodyMessage}}
	}

	var req CreateTokenRequest
	var errs ValidationErrors
	mistyped := make(map[string]bool)

	decodeField := func(name string, target interface{}) {
		value, ok := fields[name]
		if !ok {
			return
		}
		if err := json.Unmarshal(value, target); err != nil {
			mistyped[name] = true
			errs = append(errs, ValidationError{
				Field:   name,
				Tag:     "type",
				Value:   string(value),
				Message: createTokenMessages[name]["type"],
			})
		}
	}

	decodeField("userId", &req.UserID)
	decodeField("scopes", &req.Scopes)
	decodeField("expiresInMinutes", &req.ExpiresInMinutes)

	// encoding/json decodes a null element into "", which is not a string scope.
	if value, ok := fields["scopes"]; ok && !mistyped["scopes"] && hasNullElement(value) {
		mistyped["scopes"] = true
		errs = append(errs, ValidationError{
			Field:   "scopes",
			Tag:     "type",
			Value:   string(value),
			Message: createTokenMessages["scopes"]["type"],
		})
	}

	for _, fieldErr := range v.ValidateStruct(req) {
		// A type error already explains why the field is unusable.
		if mistyped[fieldErr.Field] {
			continue
		}
		if message, ok := createTokenMessages[fieldErr.Field][fieldErr.Tag]; ok {
			fieldErr.Message = message
		}
		errs = append(errs, fieldErr)
	}

	if len(errs) > 0 {
		return services.CreateTokenInput{}, errs
	}

	return services.CreateTokenInput{
		UserID:           *req.UserID,
		Scopes:           append([]string(nil), (*req.Scopes)...),
		ExpiresInMinutes: int(*req.ExpiresInMinutes),
	}, nil
}

// hasNullElement reports whether raw is a JSON array containing null.
func hasNullElement(raw json.RawMessage) bool {
	var elements []*string
	if err := json.Unmarshal(raw, &elements); err != nil {
		return false
	}
	for _, element := range elements {
		if element == nil {
			return true
		}
	}
	return false
}
