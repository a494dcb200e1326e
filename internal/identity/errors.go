package identity

import "errors"

// Code is a provider error code. Values follow the auth/<reason> convention
// clients already switch on.
type Code string

const (
	CodeInvalidCredential  Code = "auth/invalid-credential"
	CodeUserNotFound       Code = "auth/user-not-found"
	CodeWrongPassword      Code = "auth/wrong-password"
	CodeEmailInUse         Code = "auth/email-already-in-use"
	CodePopupClosed        Code = "auth/popup-closed-by-user"
	CodeUnauthorizedDomain Code = "auth/unauthorized-domain"
	CodeInvalidToken       Code = "auth/invalid-token"
	CodeInvalidState       Code = "auth/invalid-state"
	CodeNotConfigured      Code = "auth/operation-not-allowed"
	CodeInternal           Code = "auth/internal-error"
)

// Error is returned by every Provider method that fails.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, ErrEmailInUse)
// works regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

var (
	ErrInvalidCredential  = &Error{Code: CodeInvalidCredential}
	ErrUserNotFound       = &Error{Code: CodeUserNotFound}
	ErrWrongPassword      = &Error{Code: CodeWrongPassword}
	ErrEmailInUse         = &Error{Code: CodeEmailInUse}
	ErrPopupClosed        = &Error{Code: CodePopupClosed}
	ErrUnauthorizedDomain = &Error{Code: CodeUnauthorizedDomain}
	ErrInvalidToken       = &Error{Code: CodeInvalidToken}
	ErrInvalidState       = &Error{Code: CodeInvalidState}
	ErrNotConfigured      = &Error{Code: CodeNotConfigured}
)

func newError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the provider code from err. Errors that did not come from a
// provider report CodeInternal; nil reports "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
