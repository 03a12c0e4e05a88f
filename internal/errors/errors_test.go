package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInputMalformed, "bad document array", nil)
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeInputMalformed, err.Code)
	assert.Equal(t, CategoryInput, err.Category)
	assert.Equal(t, SeverityFatal, err.Severity)
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Error(), ErrCodeInputMalformed)
	assert.Contains(t, err.Error(), "bad document array")
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeInputMalformed, cause)
	require.NotNil(t, err)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, cause.Error(), err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		name     string
		err      *DocfindError
		code     string
		category Category
	}{
		{"input", InputMalformed("bad input", nil), ErrCodeInputMalformed, CategoryInput},
		{"builder", BuilderInvariant("duplicate phrase after grouping", nil), ErrCodeBuilderInvariant, CategoryBuilder},
		{"template-missing-global", TemplateError(ErrCodeTemplateMissingGlobal, "INDEX_BASE not exported", nil), ErrCodeTemplateMissingGlobal, CategoryTemplate},
		{"template-no-memory", TemplateError(ErrCodeTemplateNoMemory, "module has no memory section", nil), ErrCodeTemplateNoMemory, CategoryTemplate},
		{"index-corrupt", IndexCorrupt("magic mismatch", nil), ErrCodeIndexCorrupt, CategoryIndex},
		{"internal", InternalError("unreachable", nil), ErrCodeInternal, CategoryInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.category, tc.err.Category)
			assert.False(t, tc.err.Retryable)
			assert.Equal(t, SeverityFatal, tc.err.Severity)
		})
	}
}

func TestIndexVersionMismatch(t *testing.T) {
	err := IndexVersionMismatch(2, 1)
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeIndexVersionMismatch, err.Code)
	assert.Contains(t, err.Message, "2")
	assert.Contains(t, err.Message, "1")
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := InputMalformed("missing title field", nil).
		WithDetail("doc_index", "42").
		WithSuggestion("ensure every document has a title")
	assert.Equal(t, "42", err.Details["doc_index"])
	assert.Equal(t, "ensure every document has a title", err.Suggestion)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(InputMalformed("x", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.True(t, IsFatal(BuilderInvariant("x", nil)))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestGetCodeAndCategory(t *testing.T) {
	err := IndexCorrupt("truncated section", nil)
	assert.Equal(t, ErrCodeIndexCorrupt, GetCode(err))
	assert.Equal(t, CategoryIndex, GetCategory(err))

	plain := errors.New("plain")
	assert.Equal(t, "", GetCode(plain))
	assert.Equal(t, Category(""), GetCategory(plain))
}

func TestIsMatchesByCode(t *testing.T) {
	a := InputMalformed("first", nil)
	b := InputMalformed("second", nil)
	assert.True(t, errors.Is(a, b))

	c := IndexCorrupt("third", nil)
	assert.False(t, errors.Is(a, c))
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"input", InputMalformed("x", nil), 2},
		{"template", TemplateError(ErrCodeTemplateMalformed, "x", nil), 3},
		{"builder", BuilderInvariant("x", nil), 4},
		{"index", IndexCorrupt("x", nil), 4},
		{"internal", InternalError("x", nil), 4},
		{"plain", errors.New("plain"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}
