package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryImport        ErrorCategory = "import"
	CategoryStorage       ErrorCategory = "storage"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeEncodingError  ErrorCode = "encoding_error"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"

	// Validation errors (per-row discard reasons)
	CodeMissingField ErrorCode = "missing_required_field"
	CodeInvalidDate  ErrorCode = "unparseable_date"
	CodeInvalidPrice ErrorCode = "unparseable_price"
	CodeInvalidType  ErrorCode = "invalid_type"

	// Import errors (fatal for a whole file)
	CodeEmptyFile   ErrorCode = "empty_file"
	CodeNoValidRows ErrorCode = "no_valid_rows"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Storage errors
	CodeStoreReadFailed  ErrorCode = "store_read_failed"
	CodeStoreWriteFailed ErrorCode = "store_write_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// LedgerError is the base error type for all application errors
type LedgerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *LedgerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *LedgerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryImport, CategoryInternal:
		return 5
	case CategoryStorage:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *LedgerError) WithContext(key string, value interface{}) *LedgerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *LedgerError) WithSuggestion(suggestion string) *LedgerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new LedgerError
func New(category ErrorCategory, code ErrorCode, message string) *LedgerError {
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with LedgerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}

	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and re-export it from the marketplace"
	case CodeEncodingError:
		message = fmt.Sprintf("file is not valid UTF-8 text: %s", path)
		suggestion = "save the file in UTF-8 encoding and try again"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, line int, column string, value string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidDate:
		message = fmt.Sprintf("could not parse date in field '%s': %v", field, value)
		suggestion = "use a recognizable date such as '15/01/2024', '20 Aug 2024' or an ISO timestamp"
	case CodeInvalidPrice:
		message = fmt.Sprintf("could not parse price in field '%s': %v", field, value)
		suggestion = "use decimal currency like '12.34' or integer cents like '1234'"
	case CodeInvalidType:
		message = fmt.Sprintf("invalid transaction type in field '%s': %v", field, value)
		suggestion = "use 'purchase' or 'sale' for the type column"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ImportError creates an import-level (whole file) error
func ImportError(code ErrorCode, file string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeEmptyFile:
		message = fmt.Sprintf("file %s is empty", file)
		suggestion = "ensure the export contains a header line and data rows"
	case CodeNoValidRows:
		message = fmt.Sprintf("no valid rows found in %s", file)
		suggestion = "check that the file has data rows with item, game, date, price and type columns"
	default:
		message = fmt.Sprintf("import failed for %s", file)
		suggestion = "review the file contents and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryImport, code, message)
	} else {
		result = New(CategoryImport, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// StorageError creates a ledger-storage related error
func StorageError(code ErrorCode, path string, err error) *LedgerError {
	var message string
	var suggestion string

	switch code {
	case CodeStoreReadFailed:
		message = fmt.Sprintf("failed to read ledger file: %s", path)
		suggestion = "check that the ledger file exists and is valid JSON"
	case CodeStoreWriteFailed:
		message = fmt.Sprintf("failed to write ledger file: %s", path)
		suggestion = "check disk space and write permissions for the ledger directory"
	default:
		message = fmt.Sprintf("storage error: %s", path)
		suggestion = "check the ledger file and try again"
	}

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("ledger_path", path)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *LedgerError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	suggestion := "this is likely a bug - please report it with the error details"

	var result *LedgerError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*LedgerError        `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*LedgerError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if errs == nil {
		summary.Errors = []*LedgerError{}
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	count, exists := es.ByCode[code]
	return exists && count > 0
}

// Utility functions

// AsLedgerError extracts a LedgerError from an error chain
func AsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// HasCode reports whether err is a LedgerError carrying the given code
func HasCode(err error, code ErrorCode) bool {
	if ledgerErr, ok := AsLedgerError(err); ok {
		return ledgerErr.Code == code
	}
	return false
}

// WrapIfNeeded wraps an error if it's not already a LedgerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *LedgerError {
	if err == nil {
		return nil
	}

	if ledgerErr, ok := AsLedgerError(err); ok {
		return ledgerErr
	}

	return Wrap(err, category, code, message)
}
