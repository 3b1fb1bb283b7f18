// Package faqerrors defines the shared error taxonomy for the provenance
// registry. All construction-time failures are local and recoverable: the
// offending record is rejected, never coerced, and no batch is aborted.
package faqerrors

import "fmt"

// ValidationError reports a malformed field at record construction time:
// wrong digest length, score out of range, missing required cross-reference.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError for the named field.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConsistencyViolation reports fields that individually validate but disagree
// with each other: score/level/decision mismatch, or an attempt to reopen a
// closed validity window. Code is machine-readable.
type ConsistencyViolation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ConsistencyViolation) Error() string {
	return e.Message
}

// Consistencyf builds a ConsistencyViolation with the given code.
func Consistencyf(code, format string, args ...any) *ConsistencyViolation {
	return &ConsistencyViolation{Code: code, Message: fmt.Sprintf(format, args...)}
}
