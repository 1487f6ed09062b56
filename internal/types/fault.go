package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Fault kinds surfaced to clients over REST and the canvas socket.
const (
	FaultInvalidToken     = "invalidToken"
	FaultPermissionDenied = "permissionDenied"
	FaultNotFound         = "notFound"
	FaultValidation       = "validation"
	FaultConflict         = "conflict"
	FaultStore            = "store"
)

// Fault is a structured, non-fatal error delivered to a single caller.
// Its JSON shape is the wire payload of the socket `socketError` event.
type Fault struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Type, f.Message)
}

// StatusCode maps a fault kind to the HTTP status used on the REST surface.
func (f *Fault) StatusCode() int {
	switch f.Type {
	case FaultInvalidToken:
		return http.StatusUnauthorized
	case FaultPermissionDenied:
		return http.StatusForbidden
	case FaultNotFound:
		return http.StatusNotFound
	case FaultValidation:
		return http.StatusBadRequest
	case FaultConflict:
		return http.StatusConflict
	case FaultStore:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// NewFault creates a fault of the given kind.
func NewFault(kind, format string, args ...interface{}) *Fault {
	return &Fault{Type: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidToken(format string, args ...interface{}) *Fault {
	return NewFault(FaultInvalidToken, format, args...)
}

func PermissionDenied(format string, args ...interface{}) *Fault {
	return NewFault(FaultPermissionDenied, format, args...)
}

func NotFound(format string, args ...interface{}) *Fault {
	return NewFault(FaultNotFound, format, args...)
}

func Validation(format string, args ...interface{}) *Fault {
	return NewFault(FaultValidation, format, args...)
}

func Conflict(format string, args ...interface{}) *Fault {
	return NewFault(FaultConflict, format, args...)
}

func Store(format string, args ...interface{}) *Fault {
	return NewFault(FaultStore, format, args...)
}

// AsFault unwraps err into a *Fault if there is one in its chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
