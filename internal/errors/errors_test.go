package errors

import (
	stderrors "errors"
	"testing"
)

func TestPortalError_Error(t *testing.T) {
	err := NewInvalidRequest("file is required")
	if got := err.Error(); got != "INVALID_REQUEST: file is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestConstructors_CodesAndStatuses(t *testing.T) {
	cases := []struct {
		err    *PortalError
		code   ErrorCode
		status int
	}{
		{NewInvalidRequest("x"), ErrInvalidRequest, 400},
		{NewNotFound("p1"), ErrNotFound, 404},
		{NewSessionActive("p1"), ErrSessionActive, 409},
		{NewNoSession(), ErrNoSession, 409},
		{NewConflict("x"), ErrConflict, 409},
		{NewExtractionFailed("x"), ErrExtractionFailed, 422},
		{NewStoreWrite("p1", nil), ErrStoreWrite, 500},
		{NewInternal(nil), ErrInternal, 500},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("Code = %s, want %s", tc.err.Code, tc.code)
		}
		if tc.err.Status != tc.status {
			t.Errorf("%s: Status = %d, want %d", tc.code, tc.err.Status, tc.status)
		}
	}
}

func TestNotFound_Details(t *testing.T) {
	err := NewNotFound("p1")
	if err.Details["portal_id"] != "p1" {
		t.Errorf("Details = %v, want portal_id p1", err.Details)
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("p1")
	if !Is(err, ErrNotFound) {
		t.Error("Is(NewNotFound, ErrNotFound) = false")
	}
	if Is(err, ErrInvalidRequest) {
		t.Error("Is matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrNotFound) {
		t.Error("Is matched a non-portal error")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is matched nil")
	}
}

func TestAs_Interop(t *testing.T) {
	var pErr *PortalError
	err := error(NewStoreWrite("p1", stderrors.New("disk full")))
	if !stderrors.As(err, &pErr) {
		t.Fatal("errors.As failed on PortalError")
	}
	if pErr.Message != "disk full" {
		t.Errorf("Message = %q, want wrapped cause text", pErr.Message)
	}
}
