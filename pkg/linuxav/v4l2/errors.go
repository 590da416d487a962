//go:build linux

package v4l2

import "errors"

// Negotiation errors returned by Start. The session requires exact
// acceptance: if the driver adjusts any requested parameter, Start fails
// with the matching sentinel instead of silently streaming the adjusted
// value. Use errors.Is to classify; the wrapped message carries what the
// driver actually offered.
var (
	// ErrBadInterval means the driver could not honor the requested
	// frame interval, or reported a degenerate one.
	ErrBadInterval = errors.New("unsupported frame interval")
	// ErrBadResolution means the driver adjusted the resolution away
	// from the exact request.
	ErrBadResolution = errors.New("unsupported resolution")
	// ErrBadFormat means the FourCC was malformed or the driver adjusted
	// the pixel format away from the request.
	ErrBadFormat = errors.New("unsupported pixel format")
	// ErrBadField means the driver adjusted the field order away from
	// the request.
	ErrBadField = errors.New("unsupported field order")
)
