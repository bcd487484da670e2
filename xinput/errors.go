package xinput

import "errors"

// Error taxonomy shared across the engine. These are not tied to any
// platform error code; the legacy-API wrapper translates them to whatever
// the host platform expects.
var (
	// ErrInvalidParam: malformed data format, out-of-range property
	// value, buffer too small, unknown property kind with a specific
	// target.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrObjectNotFound: a property or query target resolves to no
	// virtual object.
	ErrObjectNotFound = errors.New("object not found")

	// ErrUnsupported: property/value pair acknowledged but not
	// implemented.
	ErrUnsupported = errors.New("unsupported")

	// ErrNoEffect: request was valid and already satisfied.
	ErrNoEffect = errors.New("no effect")

	// ErrOverflow: the event buffer overflowed between batches;
	// non-fatal, data is still returned alongside this error.
	ErrOverflow = errors.New("event buffer overflow")

	// ErrDeviceNotConnected is surfaced from the source.
	ErrDeviceNotConnected = errors.New("device not connected")

	// ErrGeneric marks an internal invariant violation at the State
	// Writer or Event Encoder — always a bug, never a caller error.
	ErrGeneric = errors.New("internal invariant violated")
)
