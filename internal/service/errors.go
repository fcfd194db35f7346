// Package service implements the marketplace use cases on top of the
// repositories.  Services return *Error for every failure a client can act
// on; anything else is an internal error.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidToken
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidToken:
		return "invalid_token"
	case KindUnavailable:
		return "unavailable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a domain error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind of a domain error.  ok is false for internal
// errors.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Messages shared between services and asserted by tests.
const (
	MsgUserNotFound         = "User not found"
	MsgCredentialsTaken     = "Username or email already taken"
	MsgUsernameTaken        = "Username already taken"
	MsgEmailTaken           = "Email already taken"
	MsgInvalidCredentials   = "Invalid credentials"
	MsgTokenRequired        = "Token is required for logout"
	MsgInvalidToken         = "Invalid or expired token"
	MsgRegisterFields       = "Username, email and password are required"
	MsgPasswordTooLong      = "Password must be at most 72 bytes"
	MsgLoginFields          = "Email and password are required"
	MsgAdminRequired        = "Admin access required"
	MsgInvalidRole          = "Role must be user or admin"
	MsgPhotoRequired        = "Photo is required"
	MsgBookNotFound         = "Book not found"
	MsgBookFields           = "Name, author, location and contact phone are required"
	MsgBookForbidden        = "You are not allowed to modify this book"
	MsgAllFieldsRequired    = "All fields are required"
	MsgBookUnavailable      = "Book is not available"
	MsgNoReservationForBook = "No reservation found for this book."
	MsgNoReservations       = "No reservations found"
	MsgSelfDelete           = "You cannot delete your own account"
)
