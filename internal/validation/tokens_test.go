package validation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madfam-org/ticketbooth/internal/services"
)

func TestValidateCreateTokenInput_Valid(t *testing.T) {
	v := NewValidator()

	input, errs := v.ValidateCreateTokenInput([]byte(`{"userId":"user-1","scopes":["read","write"],"expiresInMinutes":60}`))

	require.Empty(t, errs)
	assert.Equal(t, services.CreateTokenInput{
		UserID:           "user-1",
		Scopes:           []string{"read", "write"},
		ExpiresInMinutes: 60,
	}, input)
}

func TestValidateCreateTokenInput_AcceptsIntegralFloatsAndIgnoresUnknownFields(t *testing.T) {
	v := NewValidator()

	input, errs := v.ValidateCreateTokenInput([]byte(`{"userId":"u","scopes":["read"],"expiresInMinutes":1e2,"note":"x"}`))

	require.Empty(t, errs)
	assert.Equal(t, 100, input.ExpiresInMinutes)
}

func TestValidateCreateTokenInput_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"missing userId", `{"scopes":["read"],"expiresInMinutes":60}`, "userId", "userId is required"},
		{"empty userId", `{"userId":"","scopes":["read"],"expiresInMinutes":60}`, "userId", "userId is required"},
		{"null userId", `{"userId":null,"scopes":["read"],"expiresInMinutes":60}`, "userId", "userId is required"},
		{"numeric userId", `{"userId":42,"scopes":["read"],"expiresInMinutes":60}`, "userId", "userId must be a string"},
		{"missing scopes", `{"userId":"u","expiresInMinutes":60}`, "scopes", "At least one scope is required"},
		{"empty scopes", `{"userId":"u","scopes":[],"expiresInMinutes":60}`, "scopes", "At least one scope is required"},
		{"non-string scope", `{"userId":"u","scopes":["read",1],"expiresInMinutes":60}`, "scopes", "scopes must be an array of strings"},
		{"scopes as string", `{"userId":"u","scopes":"read","expiresInMinutes":60}`, "scopes", "scopes must be an array of strings"},
		{"null scope element", `{"userId":"u","scopes":[null],"expiresInMinutes":60}`, "scopes", "scopes must be an array of strings"},
		{"null among scopes", `{"userId":"u","scopes":["read",null],"expiresInMinutes":60}`, "scopes", "scopes must be an array of strings"},
		{"missing expiry", `{"userId":"u","scopes":["read"]}`, "expiresInMinutes", "expiresInMinutes is required"},
		{"string expiry", `{"userId":"u","scopes":["read"],"expiresInMinutes":"60"}`, "expiresInMinutes", "expiresInMinutes must be a number"},
		{"fractional expiry", `{"userId":"u","scopes":["read"],"expiresInMinutes":1.5}`, "expiresInMinutes", "expiresInMinutes must be an integer"},
		{"zero expiry", `{"userId":"u","scopes":["read"],"expiresInMinutes":0}`, "expiresInMinutes", "expiresInMinutes must be positive"},
		{"negative expiry", `{"userId":"u","scopes":["read"],"expiresInMinutes":-5}`, "expiresInMinutes", "expiresInMinutes must be positive"},
		{
			"overflowing expiry",
			fmt.Sprintf(`{"userId":"u","scopes":["read"],"expiresInMinutes":%d}`, services.MaxExpiresInMinutes*10),
			"expiresInMinutes",
			fmt.Sprintf("expiresInMinutes must be at most %d", services.MaxExpiresInMinutes),
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, errs := v.ValidateCreateTokenInput([]byte(tt.body))

			require.NotEmpty(t, errs)
			assert.Equal(t, services.CreateTokenInput{}, input)

			flat := errs.Flatten()
			assert.Empty(t, flat.FormErrors)
			require.Len(t, flat.FieldErrors, 1, "unexpected errors: %v", errs)
			assert.Equal(t, []string{tt.message}, flat.FieldErrors[tt.field])
		})
	}
}

func TestValidateCreateTokenInput_BoundaryExpiryAccepted(t *testing.T) {
	v := NewValidator()

	body := fmt.Sprintf(`{"userId":"u","scopes":["read"],"expiresInMinutes":%d}`, services.MaxExpiresInMinutes)
	input, errs := v.ValidateCreateTokenInput([]byte(body))

	require.Empty(t, errs)
	assert.Equal(t, int(services.MaxExpiresInMinutes), input.ExpiresInMinutes)
}

func TestValidateCreateTokenInput_ReportsEveryInvalidField(t *testing.T) {
	v := NewValidator()

	_, errs := v.ValidateCreateTokenInput([]byte(`{}`))

	flat := errs.Flatten()
	assert.Len(t, flat.FieldErrors, 3)
	assert.Contains(t, flat.FieldErrors, "userId")
	assert.Contains(t, flat.FieldErrors, "scopes")
	assert.Contains(t, flat.FieldErrors, "expiresInMinutes")
}

func TestValidateCreateTokenInput_FormErrors(t *testing.T) {
	v := NewValidator()

	for _, body := range []string{``, `not json`, `null`, `[]`, `"text"`, `{"userId":`} {
		t.Run(body, func(t *testing.T) {
			_, errs := v.ValidateCreateTokenInput([]byte(body))

			flat := errs.Flatten()
			assert.Equal(t, []string{invalidBodyMessage}, flat.FormErrors)
			assert.Empty(t, flat.FieldErrors)
		})
	}
}

func TestValidateCreateTokenInput_ScopesAreCopied(t *testing.T) {
	v := NewValidator()

	first, errs := v.ValidateCreateTokenInput([]byte(`{"userId":"u","scopes":["read"],"expiresInMinutes":1}`))
	require.Empty(t, errs)
	first.Scopes[0] = "admin"

	second, errs := v.ValidateCreateTokenInput([]byte(`{"userId":"u","scopes":["read"],"expiresInMinutes":1}`))
	require.Empty(t, errs)
	assert.Equal(t, "read", second.Scopes[0])
}

func TestValidationErrors_FlattenJSONShape(t *testing.T) {
	errs := ValidationErrors{
		{Tag: "json", Message: "bad body"},
		{Field: "userId", Tag: "required", Message: "userId is required"},
	}

	data, err := json.Marshal(errs.Flatten())
	require.NoError(t, err)
	assert.JSONEq(t, `{"formErrors":["bad body"],"fieldErrors":{"userId":["userId is required"]}}`, string(data))

	empty, err := json.Marshal(ValidationErrors(nil).Flatten())
	require.NoError(t, err)
	assert.JSONEq(t, `{"formErrors":[],"fieldErrors":{}}`, string(empty))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Tag: "json", Message: "bad body"},
		{Field: "scopes", Tag: "min", Message: "At least one scope is required"},
	}
	assert.Equal(t, "bad body; scopes: At least one scope is required", errs.Error())
}
