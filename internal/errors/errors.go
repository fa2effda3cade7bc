package errors

import "fmt"

// ErrorCode represents a Tangent error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrSessionActive    ErrorCode = "SESSION_ACTIVE"    // 409
	ErrNoSession        ErrorCode = "NO_SESSION"        // 409
	ErrConflict         ErrorCode = "CONFLICT"          // 409
	ErrExtractionFailed ErrorCode = "EXTRACTION_FAILED" // 422
	ErrStoreWrite       ErrorCode = "STORE_WRITE"       // 500
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// PortalError represents a structured error with code, status, and details.
type PortalError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PortalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PortalError {
	return &PortalError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an annotation entry cannot be found.
func NewNotFound(portalID string) *PortalError {
	return &PortalError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("annotation not found: %s", portalID),
		Details: map[string]any{"portal_id": portalID},
	}
}

// NewSessionActive creates a 409 error for when a capture session is already open.
func NewSessionActive(portalID string) *PortalError {
	return &PortalError{
		Code:    ErrSessionActive,
		Status:  409,
		Message: fmt.Sprintf("a capture session is already open for portal %q", portalID),
		Details: map[string]any{"portal_id": portalID},
	}
}

// NewNoSession creates a 409 error for operations that require an open session.
func NewNoSession() *PortalError {
	return &PortalError{
		Code:    ErrNoSession,
		Status:  409,
		Message: "no capture session is open",
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *PortalError {
	return &PortalError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewExtractionFailed creates a 422 error for when a capture span can no longer
// be read from the document (e.g., the anchor line was deleted externally).
func NewExtractionFailed(msg string) *PortalError {
	return &PortalError{
		Code:    ErrExtractionFailed,
		Status:  422,
		Message: msg,
	}
}

// NewStoreWrite creates a 500 error for when the annotation store rejects a write.
func NewStoreWrite(portalID string, err error) *PortalError {
	msg := "store write failed"
	if err != nil {
		msg = err.Error()
	}
	return &PortalError{
		Code:    ErrStoreWrite,
		Status:  500,
		Message: msg,
		Details: map[string]any{"portal_id": portalID},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PortalError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PortalError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PortalError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PortalError); ok {
		return pErr.Code == code
	}
	return false
}
