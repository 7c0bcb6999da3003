package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_ValidConditions(t *testing.T) {
	filter := NewFilter().
		Eq(FieldDocumentID, "abc123").
		Ne(FieldChunkType, "image").
		In(FieldFileName, "a.txt", "b.txt")

	require.NoError(t, filter.Validate())
	assert.Len(t, filter.Conditions(), 3)
	assert.False(t, filter.IsEmpty())
}

func TestFilter_UnknownFieldFailsValidation(t *testing.T) {
	filter := NewFilter().Eq("colour", "red")

	err := filter.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "colour")
}

func TestFilter_InWithoutValuesFailsValidation(t *testing.T) {
	filter := NewFilter().In(FieldFileName)

	err := filter.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFilter_NilIsValidAndEmpty(t *testing.T) {
	var filter *Filter

	assert.NoError(t, filter.Validate())
	assert.True(t, filter.IsEmpty())
	assert.Nil(t, filter.Conditions())
}

func TestFilter_EmptyIsValid(t *testing.T) {
	filter := NewFilter()

	assert.NoError(t, filter.Validate())
	assert.True(t, filter.IsEmpty())
}
