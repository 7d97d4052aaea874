package model

import "errors"

var (
	ErrOperationNotFound    = errors.New("operation not found")
	ErrNoAvailableResponse  = errors.New("no available mock response")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrInvalidConfiguration = errors.New("invalid configuration")

	ErrProjectNotFound      = errors.New("project not found")
	ErrPortNotFound         = errors.New("port not found")
	ErrMockResponseNotFound = errors.New("mock response not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrProjectNameTaken     = errors.New("project name is already taken")
)

// ErrorKind is the caller-visible classification of a failed call.
type ErrorKind string

const (
	ErrorKindNone                 ErrorKind = ""
	ErrorKindOperationNotFound    ErrorKind = "OperationNotFound"
	ErrorKindNoAvailableResponse  ErrorKind = "NoAvailableResponse"
	ErrorKindStorageUnavailable   ErrorKind = "StorageUnavailable"
	ErrorKindInvalidConfiguration ErrorKind = "InvalidConfiguration"
	ErrorKindInternal             ErrorKind = "Internal"
)

// ErrorKindOf classifies err. Storage failures take precedence over the other kinds.
func ErrorKindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrStorageUnavailable):
		return ErrorKindStorageUnavailable
	case errors.Is(err, ErrOperationNotFound):
		return ErrorKindOperationNotFound
	case errors.Is(err, ErrNoAvailableResponse):
		return ErrorKindNoAvailableResponse
	case errors.Is(err, ErrInvalidConfiguration):
		return ErrorKindInvalidConfiguration
	default:
		return ErrorKindInternal
	}
}
