package converter

import "github.com/tphakala/go-audio-converter/internal/buffer"

// Errors returned by the converter. Every failure wraps one of them, so
// callers match with errors.Is.
var (
	// ErrInvalidArgument indicates an out-of-range or malformed argument.
	ErrInvalidArgument = buffer.ErrInvalidArgument

	// ErrUnsupported indicates a layout, format or rate combination the
	// conversion rules do not define.
	ErrUnsupported = buffer.ErrUnsupported

	// ErrResourceExhaustion indicates a buffer could not grow any further.
	ErrResourceExhaustion = buffer.ErrResourceExhaustion

	// ErrInvalidState indicates a call in the wrong lifecycle state, such as
	// converting on a closed context.
	ErrInvalidState = buffer.ErrInvalidState
)
