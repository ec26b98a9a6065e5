package geoio

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	// ConfigurationError reports bad constructor arguments (missing file,
	// unwritable derived-output directory). Fatal, surfaced immediately.
	ConfigurationError ErrorCode = iota
	// ValidationError reports bad call arguments (mutually exclusive options,
	// non-positive sizes). Fatal for the call, does not corrupt the handle.
	ValidationError
	// OverlapError reports a requested region that does not intersect the
	// raster. Recoverable: callers iterating over many regions catch and skip.
	OverlapError
	// ReadFailure reports an I/O failure from the decoding collaborator.
	// Not retried, the underlying error is wrapped verbatim.
	ReadFailure
	// WriteFailure is the write-side counterpart of ReadFailure.
	WriteFailure
	// ShapeMismatch reports coordinate conversion inputs of inconsistent lengths.
	ShapeMismatch
	// InvalidBand reports a band index out of the 1-based valid range.
	InvalidBand
	// InvalidComponent reports a component index out of the 1-based valid range.
	InvalidComponent
	// DimensionError reports a pixel array that is neither 2-D nor 3-D.
	DimensionError
	// UnsupportedDType reports a pixel data type the target driver cannot create.
	UnsupportedDType
)

type GeoioError struct {
	code  ErrorCode
	desc  string
	cause error
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(desc string, a ...interface{}) error {
	return GeoioError{code: ConfigurationError, desc: fmt.Sprintf(desc, a...)}
}

// NewValidationError creates a new validation error
func NewValidationError(desc string, a ...interface{}) error {
	return GeoioError{code: ValidationError, desc: fmt.Sprintf(desc, a...)}
}

// NewOverlapError creates a new error stating that a region does not overlap the raster
func NewOverlapError(desc string, a ...interface{}) error {
	return GeoioError{code: OverlapError, desc: fmt.Sprintf(desc, a...)}
}

// NewReadFailure wraps an I/O error from the decoding collaborator
func NewReadFailure(cause error, desc string, a ...interface{}) error {
	return GeoioError{code: ReadFailure, desc: fmt.Sprintf(desc, a...), cause: cause}
}

// NewWriteFailure wraps an I/O error from the decoding collaborator
func NewWriteFailure(cause error, desc string, a ...interface{}) error {
	return GeoioError{code: WriteFailure, desc: fmt.Sprintf(desc, a...), cause: cause}
}

// NewShapeMismatch creates a new error stating that coordinate containers have inconsistent shapes
func NewShapeMismatch(desc string, a ...interface{}) error {
	return GeoioError{code: ShapeMismatch, desc: fmt.Sprintf(desc, a...)}
}

// NewInvalidBand creates a new error stating that a band index is invalid
func NewInvalidBand(desc string, a ...interface{}) error {
	return GeoioError{code: InvalidBand, desc: fmt.Sprintf(desc, a...)}
}

// NewInvalidComponent creates a new error stating that a component index is invalid
func NewInvalidComponent(desc string, a ...interface{}) error {
	return GeoioError{code: InvalidComponent, desc: fmt.Sprintf(desc, a...)}
}

// NewDimensionError creates a new error stating that an array dimension is unsupported
func NewDimensionError(desc string, a ...interface{}) error {
	return GeoioError{code: DimensionError, desc: fmt.Sprintf(desc, a...)}
}

// NewUnsupportedDType creates a new error stating that a data type is not creatable by a driver
func NewUnsupportedDType(desc string, a ...interface{}) error {
	return GeoioError{code: UnsupportedDType, desc: fmt.Sprintf(desc, a...)}
}

// Error implements error
func (e GeoioError) Error() string {
	var s string
	switch e.code {
	case ConfigurationError:
		s = "ConfigurationError"
	case ValidationError:
		s = "ValidationError"
	case OverlapError:
		s = "OverlapError"
	case ReadFailure:
		s = "ReadFailure"
	case WriteFailure:
		s = "WriteFailure"
	case ShapeMismatch:
		s = "ShapeMismatch"
	case InvalidBand:
		s = "InvalidBand"
	case InvalidComponent:
		s = "InvalidComponent"
	case DimensionError:
		s = "DimensionError"
	case UnsupportedDType:
		s = "UnsupportedDType"
	}
	if e.cause != nil {
		return s + ": " + e.desc + ": " + e.cause.Error()
	}
	return s + ": " + e.desc
}

// Desc returns a description of the error
func (e GeoioError) Desc() string {
	return e.desc
}

// Code returns the code of the error
func (e GeoioError) Code() ErrorCode {
	return e.code
}

// Unwrap returns the collaborator error wrapped by a Read/WriteFailure (or nil)
func (e GeoioError) Unwrap() error {
	return e.cause
}

// IsError tests whether error is a GeoioError with the given code
func IsError(err error, code ErrorCode) bool {
	var gerr GeoioError
	return errors.As(err, &gerr) && gerr.Code() == code
}

// AsError tests whether error is a GeoioError with the given code and returns it
func AsError(err error, code ErrorCode) (GeoioError, bool) {
	var gerr GeoioError
	return gerr, errors.As(err, &gerr) && gerr.Code() == code
}
