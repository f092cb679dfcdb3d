package domain

import (
	"errors"
	"net/http"
)

// Kind classifies an error for propagation and status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConfiguration
	KindSignature
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindSignature:
		return "signature"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMissingSecret    = errors.New("missing secret")
)

// Error carries a user-safe Message alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(msg string, err error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

func ConfigurationError(msg string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Err: err}
}

func SignatureError(msg string, err error) *Error {
	return &Error{Kind: KindSignature, Message: msg, Err: err}
}

// UpstreamError records a gateway or relay failure. status overrides the
// default 502 mapping when the upstream response warrants it; pass 0 to keep it.
func UpstreamError(msg string, status int, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Status: status, Err: err}
}

func InternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	var de *Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	if de.Status != 0 {
		return de.Status
	}
	switch de.Kind {
	case KindValidation, KindSignature:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the sanitized message for err, or fallback when err carries none.
func PublicMessage(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
