package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "console/internal/domain/errors"
	"console/internal/errors"
)

type loginPayload struct {
	UserDomain string `json:"userDomain" validate:"required"`
	LoginName  string `json:"loginName" validate:"required,max=64"`
	Password   string `json:"password" validate:"required"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&loginPayload{UserDomain: "system", LoginName: "admin", Password: "x"}))

	err := v.Validate(&loginPayload{LoginName: "admin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "userDomain: required; password: required", appErr.Details())
}

func TestCustomValidator_NonStruct(t *testing.T) {
	err := New().Validate("not a struct")

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}
