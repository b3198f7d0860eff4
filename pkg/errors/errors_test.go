package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeEmailInUse, status: http.StatusConflict, publicMsg: "email already in use"},
		{code: CodeWeakPassword, status: http.StatusBadRequest, publicMsg: "password must contain at least 6 characters"},
		{code: CodeUserNotFound, status: http.StatusNotFound, publicMsg: "user not found"},
		{code: CodeWrongPassword, status: http.StatusUnauthorized, publicMsg: "wrong password"},
		{code: CodeTooManyAttempts, status: http.StatusTooManyRequests, publicMsg: "too many attempts, try again later", retryable: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodePermissionDenied, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeUnavailable, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true, detailsOK: true},
		{code: CodeImport, status: http.StatusBadRequest, publicMsg: "import aborted", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeUnavailable, cause, "save failed")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	typed := As(err)
	if typed == nil || typed.Code() != CodeUnavailable {
		t.Fatalf("expected typed unavailable error, got %v", err)
	}
	if !IsCode(err, CodeUnavailable) {
		t.Fatalf("IsCode should match the wrapped code")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("IsCode should not match a different code")
	}
}

func TestAsReturnsNilForUntypedErrors(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
