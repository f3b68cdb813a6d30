package errors

import (
	stderrors "errors"
	"fmt"
)

// New creates a new PlatformError with the given code and message.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidInput, "file name is empty")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a new PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message while preserving the chain.
//
// If err already is a PlatformError its classification is kept, so wrapping a
// permanent failure with a retryable code does not make it retryable.
// Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}

	classification := getDefaultClassification(code)
	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		classification = platformErr.Classification()
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps err with a formatted message. Returns nil if err is nil.
//
// Example:
//
//	if err != nil {
//	    return errors.Wrapf(err, errors.CodeBackend, "copy %s to %s", src, dst)
//	}
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}
