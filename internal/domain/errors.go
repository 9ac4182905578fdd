package domain

import (
	"errors"
	"fmt"
)

// ErrorCode clasifica los fallos de autenticacion independientemente del transporte.
type ErrorCode string

const (
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeAccountDisabled     ErrorCode = "ACCOUNT_DISABLED"
	CodeRateLimited         ErrorCode = "RATE_LIMITED"
	CodeNetworkUnavailable  ErrorCode = "NETWORK_UNAVAILABLE"
	CodeServiceUnavailable  ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInvalidOrExpiredOTP ErrorCode = "INVALID_OR_EXPIRED_CODE"
	CodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeEmailAlreadyExists  ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeInvalidInputData    ErrorCode = "INVALID_INPUT_DATA"
	CodeSessionExpired      ErrorCode = "SESSION_EXPIRED"
	CodeNotAuthenticated    ErrorCode = "NOT_AUTHENTICATED"
	CodeUnknown             ErrorCode = "UNKNOWN_AUTH_ERROR"
)

// AuthError es el error de dominio que ven los formularios.
// Message es presentable al usuario; Status conserva el codigo de transporte.
type AuthError struct {
	Code    ErrorCode
	Message string
	Status  int
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is compara por codigo para que errors.Is funcione con los sentinelas.
func (e *AuthError) Is(target error) bool {
	var t *AuthError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewAuthError construye un AuthError envolviendo la causa de transporte.
func NewAuthError(code ErrorCode, message string, status int, cause error) *AuthError {
	return &AuthError{Code: code, Message: message, Status: status, Err: cause}
}

var (
	ErrInvalidCredentials  = &AuthError{Code: CodeInvalidCredentials, Message: "Invalid email or password."}
	ErrAccountDisabled     = &AuthError{Code: CodeAccountDisabled, Message: "This account has been disabled."}
	ErrRateLimited         = &AuthError{Code: CodeRateLimited, Message: "Too many attempts. Please wait and try again."}
	ErrNetworkUnavailable  = &AuthError{Code: CodeNetworkUnavailable, Message: "Cannot reach the server. Check your connection."}
	ErrServiceUnavailable  = &AuthError{Code: CodeServiceUnavailable, Message: "The service is temporarily unavailable."}
	ErrInvalidOrExpiredOTP = &AuthError{Code: CodeInvalidOrExpiredOTP, Message: "The code is invalid or has expired."}
	ErrAccountNotFound     = &AuthError{Code: CodeAccountNotFound, Message: "No account exists for this email."}
	ErrEmailAlreadyExists  = &AuthError{Code: CodeEmailAlreadyExists, Message: "An account with this email already exists."}
	ErrInvalidInputData    = &AuthError{Code: CodeInvalidInputData, Message: "Some of the submitted data is invalid."}
	ErrSessionExpired      = &AuthError{Code: CodeSessionExpired, Message: "Your session has expired. Please sign in again."}
	ErrNotAuthenticated    = &AuthError{Code: CodeNotAuthenticated, Message: "You are not signed in."}
	ErrUnknownAuth         = &AuthError{Code: CodeUnknown, Message: "Authentication failed."}
)

// CodeOf devuelve el codigo de dominio de err, o CodeUnknown.
func CodeOf(err error) ErrorCode {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}
