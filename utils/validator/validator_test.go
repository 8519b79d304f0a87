package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signoutRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

type callbackQuery struct {
	CallbackURL string `query:"callbackUrl" validate:"required,url"`
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(signoutRequest{UserEmail: "a@x.com"}))
	assert.NoError(t, v.Validate(callbackQuery{CallbackURL: "https://messages.example.com/cb"}))
}

func TestValidator_UsesJSONNames(t *testing.T) {
	err := New().Validate(signoutRequest{})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "userEmail is required", verr.Errors["userEmail"])
	assert.Contains(t, err.Error(), "userEmail is required")
}

func TestValidator_Messages(t *testing.T) {
	var verr *ValidationError

	err := New().Validate(signoutRequest{UserEmail: "not-an-email"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "userEmail must be a valid email address", verr.Errors["userEmail"])

	err = New().Validate(callbackQuery{CallbackURL: "::"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "callbackUrl must be a valid URL", verr.Errors["callbackUrl"])
}
