package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"MissingField", MissingField("tenantId"), ErrCodeMissingField, http.StatusBadRequest},
		{"Duplicate", Duplicate("user"), ErrCodeDuplicate, http.StatusBadRequest},
		{"NotFound", NotFound("user"), ErrCodeNotFound, http.StatusNotFound},
		{"Unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"InvalidToken", InvalidToken(), ErrCodeInvalidToken, http.StatusUnauthorized},
		{"Connectivity", Connectivity("ns", nil), ErrCodeConnectivity, http.StatusInternalServerError},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestAppError_Duplicate_MapsToBadRequest(t *testing.T) {
	// Duplicates are reported as 400, not 409.
	if got := Duplicate("user").HTTPStatus; got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestAppError_InvalidToken_OpaqueMessage(t *testing.T) {
	err := InvalidToken().WithCause(fmt.Errorf("signature mismatch for tenant acme"))
	if err.Message != "Invalid token" {
		t.Errorf("expected the opaque message, got %q", err.Message)
	}
	// The cause stays server-side; the response body carries only the message.
	resp := err.ToResponse()
	if strings.Contains(resp.Error.Message, "acme") {
		t.Error("response message must not leak the cause")
	}
}

func TestAppError_MissingField_Details(t *testing.T) {
	err := MissingField("tenantId")
	if err.Details["field"] != "tenantId" {
		t.Errorf("expected field=tenantId, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Message, "tenantId") {
		t.Errorf("expected the field to be named, got %q", err.Message)
	}
}

func TestAppError_Unauthorized_DefaultMessage(t *testing.T) {
	if got := Unauthorized("").Message; got != "Authentication required." {
		t.Errorf("expected default message, got %q", got)
	}
	if got := Unauthorized("Invalid credentials.").Message; got != "Invalid credentials." {
		t.Errorf("expected custom message, got %q", got)
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotFound("user").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Internal(nil).WithDetail("trace", "abc")
	if err.Details["trace"] != "abc" {
		t.Errorf("expected trace=abc in details")
	}

	err.WithDetail("trace", "def")
	if err.Details["trace"] != "def" {
		t.Errorf("expected trace=def after overwrite")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	s := NotFound("user").Error()
	if !strings.Contains(s, string(ErrCodeNotFound)) {
		t.Errorf("expected error string to contain code, got %q", s)
	}
	if !strings.Contains(s, "not found") {
		t.Errorf("expected error string to contain message, got %q", s)
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := NotFound("user").ToResponse()
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND in response, got %s", resp.Error.Code)
	}
	if resp.Error.Details["resource"] != "user" {
		t.Error("expected resource=user in response details")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Internal(nil)
	wrapped := fmt.Errorf("wrap: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for a wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("plain error")); ok {
		t.Error("expected AsAppError to fail for a plain error")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Duplicate("user"))
	if !IsCode(err, ErrCodeDuplicate) {
		t.Error("expected IsCode to match through wrapping")
	}
	if IsCode(err, ErrCodeNotFound) {
		t.Error("expected IsCode to reject a different code")
	}
	if IsCode(nil, ErrCodeNotFound) {
		t.Error("expected IsCode to reject nil")
	}
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = NotFound("user")
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		t.Error("stderrors.As should work with AppError")
	}
}
