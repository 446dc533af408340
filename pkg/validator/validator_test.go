package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sendPayload struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	Priority    string `json:"priority" validate:"omitempty,priority_level"`
	Code        string `json:"code,omitempty" validate:"omitempty,len=4"`
}

func init() {
	MustRegister("priority_level", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "high", "medium", "low":
			return true
		}
		return false
	}, "{field} must be High, Medium or Low")
}

func TestStructAcceptsValidPayload(t *testing.T) {
	require.NoError(t, Struct(sendPayload{RecipientID: 7, Title: "Reminder", Priority: "High"}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sendPayload{Email: "invalid", Priority: "urgent"})

	var failures FieldErrors
	require.True(t, errors.As(err, &failures))

	rules := map[string]string{}
	for _, f := range failures {
		rules[f.Field] = f.Rule
	}
	require.Equal(t, map[string]string{
		"recipient_id": "required",
		"title":        "required",
		"email":        "email",
		"priority":     "priority_level",
	}, rules)
}

func TestStructRendersMessages(t *testing.T) {
	err := Struct(sendPayload{RecipientID: 1, Title: strings.Repeat("x", 101), Priority: "urgent", Code: "12"})
	require.EqualError(t, err,
		"title must be at most 100 characters; priority must be High, Medium or Low; code failed validation: len=4")
}

func TestFieldErrorsFallbackMessage(t *testing.T) {
	require.Equal(t, "invalid request payload", FieldErrors{}.Error())
	require.Equal(t, "recipient id is required", render("recipient_id", "required", ""))
}
