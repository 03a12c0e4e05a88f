// Package errors provides structured error handling for docfind.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: input/ingestion errors (C1)
//   - 2XX: builder invariant errors (C3/C5)
//   - 3XX: WASM template errors (C7)
//   - 4XX: index/query errors (C8/C9)
//   - 5XX: internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryInput indicates malformed or invalid input documents.
	CategoryInput Category = "INPUT"
	// CategoryBuilder indicates an invariant violation during index assembly.
	CategoryBuilder Category = "BUILDER"
	// CategoryTemplate indicates a problem with the WASM template module.
	CategoryTemplate Category = "TEMPLATE"
	// CategoryIndex indicates a problem with a serialized or loaded index image.
	CategoryIndex Category = "INDEX"
	// CategoryInternal indicates an unexpected internal error.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates an unrecoverable error; the caller must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the process can continue.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category. These map directly onto spec.md §7.
const (
	// Input errors (100-199) — raised by the ingestor (C1).
	ErrCodeInputMalformed = "ERR_101_INPUT_MALFORMED"

	// Builder errors (200-299) — raised by the posting aggregator and index
	// builder (C3/C5). Per spec.md §7 these indicate programmer error, not a
	// recoverable runtime condition. The builder returns them as errors; it
	// does not panic.
	ErrCodeBuilderInvariant = "ERR_201_BUILDER_INVARIANT"

	// Template errors (300-399) — raised by the WASM embedder (C7).
	ErrCodeTemplateMissingGlobal = "ERR_301_TEMPLATE_MISSING_GLOBAL"
	ErrCodeTemplateNoMemory      = "ERR_302_TEMPLATE_NO_MEMORY"
	ErrCodeTemplateMalformed     = "ERR_303_TEMPLATE_MALFORMED"

	// Index errors (400-499) — raised by the query engine on load (C8).
	ErrCodeIndexVersionMismatch = "ERR_401_INDEX_VERSION_MISMATCH"
	ErrCodeIndexCorrupt         = "ERR_402_INDEX_CORRUPT"

	// Internal errors (500-599).
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_INPUT_MALFORMED")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryInput
	case '2':
		return CategoryBuilder
	case '3':
		return CategoryTemplate
	case '4':
		return CategoryIndex
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code. Every code
// docfind raises is fatal to the operation in progress — spec.md §7 states
// plainly that "no error is retried internally".
func severityFromCode(code string) Severity {
	return SeverityFatal
}

// isRetryableCode always reports false: docfind never retries internally.
func isRetryableCode(code string) bool {
	return false
}

// exitCodeFromCode maps an error code to the process exit code spec.md §6
// assigns: 1 invalid arguments, 2 input parse error, 3 template missing or
// malformed, 4 I/O or other build/index errors.
func exitCodeFromCode(code string) int {
	switch categoryFromCode(code) {
	case CategoryInput:
		return 2
	case CategoryTemplate:
		return 3
	case CategoryBuilder, CategoryIndex, CategoryInternal:
		return 4
	default:
		return 1
	}
}

// ExitCode returns the process exit code spec.md §6 assigns to err, or 1 if
// err is not a *DocfindError.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if de, ok := err.(*DocfindError); ok {
		return exitCodeFromCode(de.Code)
	}
	return 1
}
