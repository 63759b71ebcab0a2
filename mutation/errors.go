package mutation

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies why a mutation failed.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindTransport
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindTransport:
		return "transport"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// KindOf maps err to its Kind. Errors without a go-errors category are
// internal, except context cancellation which is reported as transport.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case goerrors.IsCategory(err, goerrors.CategoryValidation),
		goerrors.IsCategory(err, goerrors.CategoryBadInput):
		return KindValidation
	case goerrors.IsCategory(err, goerrors.CategoryNotFound):
		return KindNotFound
	case goerrors.IsCategory(err, goerrors.CategoryAuth),
		goerrors.IsCategory(err, goerrors.CategoryAuthz):
		return KindAuthorization
	case goerrors.IsCategory(err, goerrors.CategoryExternal):
		return KindTransport
	case goerrors.IsCategory(err, goerrors.CategoryConflict):
		return KindConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	}
	return KindInternal
}

// NewValidationError turns an ozzo validation error into a validation failure.
func NewValidationError(err error, t Type) error {
	return goerrors.FromOzzoValidation(err, fmt.Sprintf("invalid %s payload", t)).
		WithTextCode("INVALID_PAYLOAD")
}

// NewUnauthorized reports a mutation attempted without an identity.
func NewUnauthorized(t Type) error {
	return goerrors.New(fmt.Sprintf("%s requires an authenticated user", t), goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode("UNAUTHORIZED")
}

// NewNotFound reports a referenced record that does not exist.
func NewNotFound(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode("NOT_FOUND")
}

// NewTransportError wraps a failure to reach the gateway.
func NewTransportError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithTextCode("GATEWAY_UNAVAILABLE")
}

func newInternal(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode("INTERNAL_ERROR")
}
