package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := &AppError{
		Message: "something went wrong",
	}
	if err.Error() != "something went wrong" {
		t.Errorf("expected 'something went wrong', got %v", err.Error())
	}

	wrappedErr := errors.New("underlying error")
	errWithWrap := &AppError{
		Message: "failed operation",
		Err:     wrappedErr,
	}
	expected := "failed operation: underlying error"
	if errWithWrap.Error() != expected {
		t.Errorf("expected %q, got %q", expected, errWithWrap.Error())
	}
	if !errors.Is(errWithWrap, wrappedErr) {
		t.Error("expected wrapped error to be reachable through Unwrap")
	}
}

func TestAppError_Code(t *testing.T) {
	err := &AppError{
		ErrorCode: "ERR_CODE_123",
	}
	if err.Code() != "ERR_CODE_123" {
		t.Errorf("expected ERR_CODE_123, got %v", err.Code())
	}
}

func TestAppError_Kind(t *testing.T) {
	tests := []struct {
		typ  ErrorType
		want string
	}{
		{ErrorTypeValidation, "ValidationError"},
		{ErrorTypeUnauthorized, "UnauthorizedError"},
		{ErrorTypeTooLarge, "PayloadTooLargeError"},
		{ErrorTypeStorage, "StorageError"},
		{ErrorTypeInternal, "InternalError"},
		{"", "InternalError"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			err := &AppError{Type: tt.typ}
			if got := err.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_KindThroughWrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewValidationError("bad", "BAD", ""))

	var kinded interface{ Kind() string }
	if !errors.As(err, &kinded) {
		t.Fatal("expected wrapped AppError to expose Kind")
	}
	if kinded.Kind() != "ValidationError" {
		t.Errorf("expected ValidationError, got %s", kinded.Kind())
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("invalid input", "VALIDATION_FAILED", "Check your fields")
	if err.Type != ErrorTypeValidation {
		t.Errorf("expected TypeValidation, got %v", err.Type)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err.StatusCode)
	}
	if err.RecoverySuggestion() != "Check your fields" {
		t.Errorf("expected 'Check your fields', got %v", err.RecoverySuggestion())
	}
}

func TestNewStorageError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewStorageError("could not save", "STORE_FAILED", underlying)
	if err.Type != ErrorTypeStorage {
		t.Errorf("expected TypeStorage, got %v", err.Type)
	}
	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err.StatusCode)
	}
	if err.Err != underlying {
		t.Error("underlying error not correctly wrapped")
	}
}

func TestNewInternalError(t *testing.T) {
	cause := errors.New("panic: nil map write")
	err := NewInternalError("Internal server error", "PANIC", cause)
	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err.StatusCode)
	}
	if err.IsOperational {
		t.Error("internal errors are not operational")
	}
	if err.Kind() != "InternalError" {
		t.Errorf("expected InternalError, got %s", err.Kind())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestWriteHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTP(rec, NewValidationError("email is required", "EMAIL_REQUIRED", "Provide an email address"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %q", ct)
	}

	var body struct {
		Error AppError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Error.ErrorCode != "EMAIL_REQUIRED" || body.Error.Type != ErrorTypeValidation {
		t.Errorf("unexpected body: %+v", body.Error)
	}

	rec = httptest.NewRecorder()
	WriteHTTP(rec, &AppError{Message: "no status"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 fallback, got %d", rec.Code)
	}
}
