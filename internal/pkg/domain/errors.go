package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so that transports can map it without
// inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindConflict
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the typed error returned by services and repositories.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// NewNotFoundError reports that the entity with the given id does not exist.
func NewNotFoundError(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with id '%v' does not exist", entity, id)}
}

// NewNotFoundErrorf builds a NotFound error with a formatted message.
func NewNotFoundErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewBadRequestError builds a BadRequest error.
func NewBadRequestError(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// NewBadRequestErrorf builds a BadRequest error with a formatted message.
func NewBadRequestErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidStateError reports a forbidden status transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewConflictError reports a write that lost against a concurrent one or
// violated a uniqueness rule.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Wrap attaches a cause to e and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a NotFound domain error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsBadRequest reports whether err is a BadRequest domain error.
func IsBadRequest(err error) bool { return err != nil && KindOf(err) == KindBadRequest }

// IsConflict reports whether err is a Conflict domain error anywhere in its chain.
func IsConflict(err error) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Kind == KindConflict {
			return true
		}
		err = de.Err
	}
	return false
}
