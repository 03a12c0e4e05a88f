package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser(t *testing.T) {
	err := InputMalformed("document 3 is missing a title field", nil).
		WithSuggestion("add a title to every document")
	out := FormatForUser(err, false)
	assert.Contains(t, out, "document 3 is missing a title field")
	assert.Contains(t, out, "add a title to every document")
	assert.Contains(t, out, ErrCodeInputMalformed)
}

func TestFormatForUserNonDocfindError(t *testing.T) {
	out := FormatForUser(errors.New("plain failure"), false)
	assert.Equal(t, "plain failure", out)
}

func TestFormatForUserNil(t *testing.T) {
	assert.Equal(t, "", FormatForUser(nil, false))
}

func TestFormatForCLI(t *testing.T) {
	err := BuilderInvariant("duplicate phrase after grouping", nil)
	out := FormatForCLI(err)
	assert.Contains(t, out, "duplicate phrase after grouping")
	assert.Contains(t, out, ErrCodeBuilderInvariant)
}

func TestFormatForCLIWrapsPlainError(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatJSON(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := IndexCorrupt("truncated postings section", cause).WithDetail("section", "postings")

	data, marshalErr := FormatJSON(err)
	require.NoError(t, marshalErr)

	var je jsonError
	require.NoError(t, json.Unmarshal(data, &je))
	assert.Equal(t, ErrCodeIndexCorrupt, je.Code)
	assert.Equal(t, "truncated postings section", je.Message)
	assert.Equal(t, string(CategoryIndex), je.Category)
	assert.Equal(t, "unexpected EOF", je.Cause)
	assert.Equal(t, "postings", je.Details["section"])
	assert.False(t, je.Retryable)
}

func TestFormatJSONNil(t *testing.T) {
	data, err := FormatJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestFormatForLog(t *testing.T) {
	err := TemplateError(ErrCodeTemplateNoMemory, "module declares no memory section", nil).
		WithSuggestion("embed a memory section in the template")
	attrs := FormatForLog(err)
	assert.Equal(t, ErrCodeTemplateNoMemory, attrs["error_code"])
	assert.Equal(t, "module declares no memory section", attrs["message"])
	assert.Equal(t, string(CategoryTemplate), attrs["category"])
	assert.Equal(t, "embed a memory section in the template", attrs["suggestion"])
}

func TestFormatForLogNonDocfindError(t *testing.T) {
	attrs := FormatForLog(errors.New("plain"))
	assert.Equal(t, "plain", attrs["error"])
}

func TestFormatForLogNil(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
}
