package buffer

import "errors"

// Error kinds shared by every conversion stage. The root package re-exports
// them so callers can match with errors.Is.
var (
	// ErrInvalidArgument indicates an out-of-range or malformed argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported indicates a configuration the conversion rules do not define.
	ErrUnsupported = errors.New("unsupported configuration")

	// ErrResourceExhaustion indicates a buffer could not be grown.
	ErrResourceExhaustion = errors.New("resource exhausted")

	// ErrInvalidState indicates an operation was called in the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state")
)
