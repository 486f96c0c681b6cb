package service

import (
	"errors"
	"fmt"
)

const (
	// ErrInternalServerError means that an internal server error has occurred, typically in the store.
	ErrInternalServerError = "internal_server_error"
	// ErrEntityNotFound means that record or row is absent in repository or storage.
	ErrEntityNotFound = "entity_not_found"
	// ErrEntityAlreadyExists means that a record with the same id is already stored.
	ErrEntityAlreadyExists = "entity_already_exists"
	// ErrBadParameter means that provided parameter does not match declared.
	ErrBadParameter = "bad_parameter"
	// ErrTransport means that the counterpart could not be reached or answered with a non-200 status.
	ErrTransport = "transport_error"
	// ErrProtocol means that the counterpart answered well-formed but negatively or without a required field.
	ErrProtocol = "protocol_error"
	// ErrMalformedMessage means that a body did not parse as the expected SIRI message.
	ErrMalformedMessage = "malformed_message"
)

// MyError represents an error within the context of vdv736 services.
type MyError struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty" xml:"Code,omitempty"`
	// Message is a human-readable message.
	Message string `json:"message" xml:"Message"`
	// Inner is a wrapped error that is never shown to API consumers.
	Inner error `json:"-" xml:"-"`
}

// NewMyError creates a new MyError.
func NewMyError(code string, message string, inner error) *MyError {
	return &MyError{
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

func NewInternalServerError(message string, inner error) *MyError {
	return wrapMyError(ErrInternalServerError, message, inner)
}

func NewEntityNotFoundError(message string, inner error) *MyError {
	return wrapMyError(ErrEntityNotFound, message, inner)
}

func NewEntityAlreadyExistsError(message string, inner error) *MyError {
	return wrapMyError(ErrEntityAlreadyExists, message, inner)
}

func NewBadParameterError(message string, inner error) *MyError {
	return wrapMyError(ErrBadParameter, message, inner)
}

func NewTransportError(message string, inner error) *MyError {
	return wrapMyError(ErrTransport, message, inner)
}

func NewProtocolError(message string, inner error) *MyError {
	return wrapMyError(ErrProtocol, message, inner)
}

func NewMalformedMessageError(message string, inner error) *MyError {
	return wrapMyError(ErrMalformedMessage, message, inner)
}

// wrapMyError keeps an inner MyError as is so the first classification wins.
func wrapMyError(code, message string, inner error) *MyError {
	myInner := ToMyError(inner)
	if myInner != nil {
		return myInner
	}

	return NewMyError(code, message, inner)
}

func (e MyError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}

	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

// Unwrap the error returning the error's reason.
func (e MyError) Unwrap() error {
	return e.Inner
}

// ToMyError returns a pointer to a vdv736 error, or nil if it is not a vdv736 error.
func ToMyError(err error) *MyError {
	var e *MyError
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// ToMyErrorCode returns the code of the error, if available.
func ToMyErrorCode(err error) string {
	myerror := ToMyError(err)
	if myerror != nil {
		return myerror.Code
	}
	return ""
}

func IsMyError(err error, code string) bool {
	myerror := ToMyError(err)
	if myerror != nil {
		return myerror.Code == code
	}
	return false
}

func IsInternalServerError(err error) bool {
	return IsMyError(err, ErrInternalServerError)
}

func IsEntityNotFoundError(err error) bool {
	return IsMyError(err, ErrEntityNotFound)
}

func IsEntityAlreadyExistsError(err error) bool {
	return IsMyError(err, ErrEntityAlreadyExists)
}

func IsBadParameterError(err error) bool {
	return IsMyError(err, ErrBadParameter)
}

func IsTransportError(err error) bool {
	return IsMyError(err, ErrTransport)
}

func IsProtocolError(err error) bool {
	return IsMyError(err, ErrProtocol)
}

func IsMalformedMessageError(err error) bool {
	return IsMyError(err, ErrMalformedMessage)
}
