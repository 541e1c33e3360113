package translate

import (
	"errors"

	"drp-proxy-go/internal/validation"
)

// Validation messages reported to callers.
const (
	MsgEndpointRequired     = "Endpoint URL must be provided"
	MsgEndpointInvalid      = "Endpoint URL must be a valid URL"
	MsgMethodRequired       = "An HTTP Method must be specified"
	MsgMethodInvalid        = "A correct HTTP Method must be specified"
	MsgRequestRequired      = "Request parameters must be provided"
	MsgRequestShape         = "Request parameters must be either a String, or a JsonObject"
	MsgEnvelopeMissing      = "A Json object was expected as POST entity, but nothing was found"
	MsgUnknownValidation    = "Unknown Validation Error"
	MsgOnlyGetPostSupported = "Only GET and POST methods are supported"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedInput is returned when the envelope is not syntactically valid JSON.
	ErrMalformedInput = errors.New("malformed JSON envelope")

	// ErrInvalidState is returned when valid JSON has the wrong structure,
	// e.g. a top-level array or a non-object headers field.
	ErrInvalidState = errors.New("unexpected JSON structure")

	// ErrUnsupportedMethod is returned when a request cannot be built for the method.
	ErrUnsupportedMethod = errors.New(MsgOnlyGetPostSupported)

	// ErrEncoding is returned when a body uses a character set that cannot be handled.
	ErrEncoding = errors.New("unsupported character encoding")
)

// ValidationError carries every message accumulated while validating one input.
type ValidationError struct {
	log *validation.Log
}

func newValidationError(log *validation.Log) *ValidationError {
	return &ValidationError{log: log}
}

// Error returns the joined messages.
func (e *ValidationError) Error() string {
	if msg, ok := e.log.Joined(); ok {
		return msg
	}
	return MsgUnknownValidation
}

// Messages returns the accumulated messages in order.
func (e *ValidationError) Messages() []string {
	return e.log.All()
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
