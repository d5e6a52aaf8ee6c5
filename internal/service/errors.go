package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed auth operation. The HTTP layer maps kinds
// to status codes per endpoint.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindState
	KindAuth
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindAuth:
		return "auth"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err; unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Client-facing messages.
const (
	MsgAccountNotFound     = "Account does not exist"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgEmailTaken          = "An account with this email already exists"
	MsgUsernameTaken       = "This username is already taken"
	MsgAlreadyVerified     = "You are already verified"
	MsgNoPendingCode       = "No pending code, request a new one"
	MsgCodeExpired         = "Code has expired"
	MsgInvalidCode         = "Invalid code"
	MsgNotVerified         = "You are not a verified user"
	MsgSamePassword        = "New password must be different from the current password"
	MsgCodeSendFailed      = "Failed to send code, try again later"
	MsgFederatedAccount    = "This account uses federated sign-in"
	MsgFederatedDisabled   = "Federated sign-in is not configured"
	MsgFederatedFailed     = "Federated sign-in failed"
	MsgFederatedUnverified = "Email is not verified by the identity provider"
)

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error()}
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
