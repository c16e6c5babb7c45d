// Package errs defines the sentinel errors returned by the graphpipe packages.
//
// Errors are wrapped with context (dimension, declared vs actual length, tensor index)
// using fmt.Errorf("%w: ..."), so callers should test them with errors.Is:
//
//	t, err := tensor.FromNested(input)
//	if errors.Is(err, errs.ErrRaggedArray) {
//	    // input is not rectangular
//	}
package errs

import "errors"

// Array ingestion errors.
var (
	// ErrNotAnArray is returned when the top-level input has no dimensionality.
	ErrNotAnArray = errors.New("input is not an array")
	// ErrEmptyArray is returned when a zero-length array is met before the element
	// kind could be determined.
	ErrEmptyArray = errors.New("array is empty")
	// ErrRaggedArray is returned when sibling sub-arrays differ in length or rank.
	ErrRaggedArray = errors.New("array is not rectangular")
	// ErrUnsupportedElementType is returned for leaves that are neither a supported
	// numeric kind nor a string.
	ErrUnsupportedElementType = errors.New("unsupported element type")
	// ErrShapeMismatch is returned when a payload length does not match its shape.
	ErrShapeMismatch = errors.New("shape does not match element count")
)

// Type registry and conversion errors.
var (
	// ErrKindNotSupported is returned by registry lookups that find no converter.
	ErrKindNotSupported = errors.New("kind not supported")
	// ErrUnsupportedConversion is returned when a tensor cannot be viewed as the
	// requested representation, e.g. a dense matrix of a string tensor.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
)

// Wire and transport errors.
var (
	// ErrMalformedMessage is returned when a wire buffer cannot be decoded.
	ErrMalformedMessage = errors.New("malformed wire message")
	// ErrUnexpectedStatus is returned by the HTTP transport for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrServer matches errors reported by the server inside a response message.
	ErrServer = errors.New("server reported an error")
)

// Caller contract errors, checked by the remote client.
var (
	// ErrNameCountMismatch is returned when input names are given but their count
	// differs from the number of input tensors.
	ErrNameCountMismatch = errors.New("input name count does not match input tensor count")
	// ErrNoInputs is returned when a call carries no input tensors.
	ErrNoInputs = errors.New("no input tensors")
)
