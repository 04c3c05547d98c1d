// Package apperror provides tests for the custom error types and utility functions.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestError_Error verifies that the Error() method returns the correct string format.
func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeMalformedMatrix, "matrix is not square"),
			expected: "[MALFORMED_MATRIX] matrix is not square",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidIndex, "vertex out of range", "source"),
			expected: "[INVALID_INDEX] vertex out of range (field: source)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestError_Unwrap verifies that the Unwrap() method correctly returns the underlying cause.
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see the cause through Unwrap")
	}
}

// TestError_HTTPStatus verifies the code to HTTP status mapping.
func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected int
	}{
		{"invalid index", CodeInvalidIndex, http.StatusBadRequest},
		{"malformed matrix", CodeMalformedMatrix, http.StatusBadRequest},
		{"negative capacity", CodeNegativeCapacity, http.StatusBadRequest},
		{"capacity overflow", CodeCapacityOverflow, http.StatusBadRequest},
		{"source equals sink", CodeSourceEqualsSink, http.StatusBadRequest},
		{"too many vertices", CodeTooManyVertices, http.StatusRequestEntityTooLarge},
		{"iteration limit", CodeIterationLimit, http.StatusUnprocessableEntity},
		{"not found", CodeNotFound, http.StatusNotFound},
		{"timeout", CodeTimeout, http.StatusGatewayTimeout},
		{"canceled", CodeCanceled, 499},
		{"rate limited", CodeRateLimited, http.StatusTooManyRequests},
		{"unavailable", CodeUnavailable, http.StatusServiceUnavailable},
		{"internal", CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.code, "msg").HTTPStatus(); got != tt.expected {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestHTTPStatus_PlainError(t *testing.T) {
	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Errorf("HTTPStatus(nil) = %d, want 200", got)
	}
	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain) = %d, want 500", got)
	}
	wrapped := fmt.Errorf("ctx: %w", New(CodeNotFound, "run not found"))
	if got := HTTPStatus(wrapped); got != http.StatusNotFound {
		t.Errorf("HTTPStatus(wrapped) = %d, want 404", got)
	}
}

// TestNew verifies the New function correctly initializes an Error.
func TestNew(t *testing.T) {
	err := New(CodeMalformedMatrix, "matrix is empty")

	if err.Code != CodeMalformedMatrix {
		t.Errorf("Code = %v, want %v", err.Code, CodeMalformedMatrix)
	}
	if err.Message != "matrix is empty" {
		t.Errorf("Message = %v, want %v", err.Message, "matrix is empty")
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidIndex, "vertex %d out of range [0, %d)", 7, 6)
	if err.Message != "vertex 7 out of range [0, 6)" {
		t.Errorf("Message = %q", err.Message)
	}
}

// TestWithDetails verifies that WithDetails adds key-value pairs to the error's details map.
func TestWithDetails(t *testing.T) {
	err := New(CodeMalformedMatrix, "ragged").
		WithDetails("row", 2).
		WithDetails("length", 3)

	if err.Details["row"] != 2 {
		t.Errorf("Details[row] = %v, want 2", err.Details["row"])
	}
	if err.Details["length"] != 3 {
		t.Errorf("Details[length] = %v, want 3", err.Details["length"])
	}

	zero := &Error{Code: CodeInternal}
	zero.WithDetails("k", "v")
	if zero.Details["k"] != "v" {
		t.Error("WithDetails should initialise a nil map")
	}
}

func TestToBody(t *testing.T) {
	body := NewWithField(CodeInvalidIndex, "sink out of range", "sink").ToBody()
	if body.Code != CodeInvalidIndex || body.Field != "sink" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Details != nil {
		t.Error("empty details should be omitted")
	}
}

// TestIsAndCode verifies code extraction through wrapping.
func TestIsAndCode(t *testing.T) {
	err := fmt.Errorf("solve: %w", New(CodeSourceEqualsSink, "same vertex"))

	if !Is(err, CodeSourceEqualsSink) {
		t.Error("Is() should match wrapped code")
	}
	if Is(err, CodeNotFound) {
		t.Error("Is() should not match a different code")
	}
	if Code(err) != CodeSourceEqualsSink {
		t.Errorf("Code() = %v", Code(err))
	}
	if Code(errors.New("plain")) != CodeInternal {
		t.Error("Code() of a plain error should be INTERNAL_ERROR")
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
	app := New(CodeTimeout, "slow")
	if From(app) != app {
		t.Error("From should return the same *Error")
	}
	plain := errors.New("disk full")
	got := From(plain)
	if got.Code != CodeInternal || !errors.Is(got, plain) {
		t.Errorf("From(plain) = %+v", got)
	}
}

func TestIsWarning(t *testing.T) {
	if !IsWarning(NewWarning(CodeInvalidArgument, "soft")) {
		t.Error("expected warning")
	}
	if IsWarning(New(CodeInvalidArgument, "hard")) {
		t.Error("expected non-warning")
	}
}

// TestValidationErrors verifies collection and folding into a single error.
func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	if v.AsError() != nil {
		t.Fatal("empty collection should fold to nil")
	}

	v.Add(NewWarning(CodeInvalidArgument, "diagonal entry is non-zero"))
	if v.HasErrors() {
		t.Fatal("warnings must not count as errors")
	}

	v.AddErrorWithField(CodeNegativeCapacity, "capacity[0][1] is negative", "matrix")
	v.AddErrorWithField(CodeNegativeCapacity, "capacity[2][3] is negative", "matrix")

	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	if len(v.ErrorMessages()) != 2 {
		t.Errorf("ErrorMessages() len = %d, want 2", len(v.ErrorMessages()))
	}

	folded := v.AsError()
	if folded.Code != CodeNegativeCapacity {
		t.Errorf("folded code = %v", folded.Code)
	}
	msgs, ok := folded.Details["errors"].([]string)
	if !ok || len(msgs) != 2 {
		t.Errorf("folded details = %v", folded.Details)
	}
}

func TestSeverity_String(t *testing.T) {
	tests := map[Severity]string{
		SeverityWarning:  "warning",
		SeverityError:    "error",
		SeverityCritical: "critical",
		Severity(42):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", s, got, want)
		}
	}
}
