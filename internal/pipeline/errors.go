package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of failure that aborted a run.
type ErrorCode string

const (
	ErrCodeIO          ErrorCode = "IO"
	ErrCodeEncoderInit ErrorCode = "ENCODER_INIT"
	ErrCodeEncoder     ErrorCode = "ENCODER"
	ErrCodeNoImages    ErrorCode = "NO_IMAGES"
)

// Error is the single error type returned by a conversion run.
type Error struct {
	Code    ErrorCode
	Message string
	Path    string // set for NO_IMAGES and path related IO failures
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Code == ErrCodeNoImages:
		return fmt.Sprintf("No images found in: %s", e.Path)
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewIOError wraps an input/output failure. The cause is kept as is so that
// errors.Is and errors.As still see the underlying *fs.PathError.
func NewIOError(path string, cause error) *Error {
	return &Error{Code: ErrCodeIO, Message: "IO error", Path: path, Cause: cause}
}

// NewEncoderInitError reports an encoder that could not be configured.
func NewEncoderInitError(cause error) *Error {
	return &Error{Code: ErrCodeEncoderInit, Message: "Could not initialize the VPX encoder", Cause: cause}
}

// NewEncoderError reports a failure while submitting or draining frames.
func NewEncoderError(message string, cause error) *Error {
	return &Error{Code: ErrCodeEncoder, Message: message, Cause: cause}
}

// NewNoImagesError reports a source directory without any recognized image.
func NewNoImagesError(path string) *Error {
	return &Error{Code: ErrCodeNoImages, Path: path}
}

// IsCode reports whether err is, or wraps, a pipeline error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
