package validation_test

import (
	"testing"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/Totarae/PersonalAccount/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_OK(t *testing.T) {
	v := validation.New()

	err := v.Validate(model.AddBookmarkRequest{BookmarkID: 1, Title: "Go", ShelfID: 2})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(model.AddBookmarkRequest{Title: "Go"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "bookmark_id is required; shelf_id is required", err.Error())
}

func TestValidate_Register(t *testing.T) {
	v := validation.New()

	login, first, empty := "testuser", "Test", ""

	err := v.Validate(model.RegisterRequest{Login: &login, FirstName: &first})
	require.Error(t, err)
	assert.Equal(t, "last_name is required", apperrors.MessageOf(err))

	// Пустая строка считается переданным значением.
	assert.NoError(t, v.Validate(model.RegisterRequest{Login: &empty, FirstName: &empty, LastName: &empty}))
}
