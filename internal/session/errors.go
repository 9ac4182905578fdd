package session

import (
	"strings"

	"job-portal/internal/domain"
	"job-portal/internal/gateway"
)

type operation string

const (
	opPassword    operation = "password"
	opOTP         operation = "otp"
	opOTPRequest  operation = "otp_request"
	opSignup      operation = "signup"
	opRevalidate  operation = "revalidate"
	opRefreshUser operation = "refresh_user"
)

var unknownMessages = map[operation]string{
	opPassword:    "Login failed. Please try again.",
	opOTP:         "Code verification failed. Please try again.",
	opOTPRequest:  "Could not send the code. Please try again.",
	opSignup:      "Registration failed. Please try again.",
	opRefreshUser: "Could not load your profile.",
}

// translate traduce status y mensaje del gateway a la taxonomia de dominio.
func translate(op operation, err error) *domain.AuthError {
	status, msg := gateway.StatusOf(err)
	if status == gateway.StatusNoConnection {
		return wrap(domain.ErrNetworkUnavailable, status, err)
	}

	switch op {
	case opPassword:
		switch status {
		case 401:
			return wrap(domain.ErrInvalidCredentials, status, err)
		case 403:
			return wrap(domain.ErrAccountDisabled, status, err)
		case 429:
			return wrap(domain.ErrRateLimited, status, err)
		}
		if isOutage(status, msg) {
			return wrap(domain.ErrServiceUnavailable, status, err)
		}
	case opOTP:
		switch status {
		case 400:
			return wrap(domain.ErrInvalidOrExpiredOTP, status, err)
		case 404:
			return wrap(domain.ErrAccountNotFound, status, err)
		}
	case opOTPRequest:
		switch status {
		case 404:
			return wrap(domain.ErrAccountNotFound, status, err)
		case 429:
			return wrap(domain.ErrRateLimited, status, err)
		}
	case opSignup:
		switch status {
		case 409:
			return wrap(domain.ErrEmailAlreadyExists, status, err)
		case 422:
			return wrap(domain.ErrInvalidInputData, status, err)
		}
	case opRefreshUser:
		if status == 401 {
			return wrap(domain.ErrSessionExpired, status, err)
		}
	}

	message := unknownMessages[op]
	if message == "" {
		message = domain.ErrUnknownAuth.Message
	}
	return domain.NewAuthError(domain.CodeUnknown, message, status, err)
}

func wrap(base *domain.AuthError, status int, cause error) *domain.AuthError {
	return domain.NewAuthError(base.Code, base.Message, status, cause)
}

// isOutage detecta caidas temporales por status o por el mensaje del gateway.
func isOutage(status int, msg string) bool {
	if status == 503 {
		return true
	}
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "unavailable") || strings.Contains(msg, "maintenance")
}
