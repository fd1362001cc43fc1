package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsMapStatus(t *testing.T) {
	cases := []struct {
		err    *ServiceError
		code   ErrorCode
		status int
	}{
		{Unauthorized(""), CodeAuthentication, http.StatusUnauthorized},
		{InvalidToken(nil), CodeAuthentication, http.StatusUnauthorized},
		{BadRequest("", nil), CodeBadRequest, http.StatusBadRequest},
		{NotFound("project"), CodeNotFound, http.StatusNotFound},
		{NameDuplicated("orders", nil), CodeNameDuplicated, http.StatusConflict},
		{TypeMismatch("wrong variant"), CodeTypeMismatch, http.StatusNotAcceptable},
		{Constraint("referenced", nil), CodeConstraint, http.StatusPreconditionFailed},
		{ServiceUnavailable("", nil), CodeServiceError, http.StatusServiceUnavailable},
		{Internal("", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("code = %s, want %s", tc.err.Code, tc.code)
		}
		if tc.err.HTTPStatus != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.code, tc.err.HTTPStatus, tc.status)
		}
		if tc.err.Message == "" {
			t.Errorf("%s: message should not be empty", tc.code)
		}
	}
}

func TestGetServiceErrorUnwrapsChain(t *testing.T) {
	cause := NotFound("frontier")
	wrapped := fmt.Errorf("listing frontiers: %w", cause)

	svcErr := GetServiceError(wrapped)
	if svcErr == nil {
		t.Fatal("GetServiceError returned nil for a wrapped service error")
	}
	if svcErr.Code != CodeNotFound {
		t.Errorf("code = %s, want %s", svcErr.Code, CodeNotFound)
	}

	if GetServiceError(stderrors.New("plain")) != nil {
		t.Error("GetServiceError should return nil for plain errors")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", TypeMismatch("bad variant"))
	if !Is(err, CodeTypeMismatch) {
		t.Error("Is should match the wrapped code")
	}
	if Is(err, CodeConstraint) {
		t.Error("Is should not match a different code")
	}
}

func TestWithDetails(t *testing.T) {
	err := Unauthorized("").WithDetails("kid", "abc").WithDetails("endpoint", "jwks")
	if err.Details["kid"] != "abc" || err.Details["endpoint"] != "jwks" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ServiceUnavailable("", cause)
	if !stderrors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}
