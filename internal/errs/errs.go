// Package errs translates provider errors into objfs errors.
//
// Missing objects become io/fs.ErrNotExist so every layer can test absence
// with errors.Is. Everything else becomes a coded errors.PlatformError.
package errs

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/ncw/swift/v2"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
)

// Swift converts ncw/swift errors.
func Swift(err error) error {
	if err == nil {
		return nil
	}
	if err == swift.ObjectNotFound || err == swift.ContainerNotFound {
		return fs.ErrNotExist
	}

	var se *swift.Error
	if stderrors.As(err, &se) {
		return FromStatus(se.StatusCode, "swift", err)
	}
	return transport("swift", err)
}

// Minio converts minio-go errors.
func Minio(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fs.ErrNotExist
	case "AccessDenied":
		return errors.Wrap(err, errors.CodeForbidden, "minio: access denied")
	case "SlowDown", "SlowDownRead", "SlowDownWrite":
		return errors.Wrap(err, errors.CodeRateLimit, "minio: slow down")
	}
	if resp.StatusCode != 0 {
		return FromStatus(resp.StatusCode, "minio", err)
	}
	return transport("minio", err)
}

// FromStatus classifies err by the HTTP status the backend answered with.
func FromStatus(status int, provider string, err error) error {
	switch {
	case status == http.StatusNotFound:
		return fs.ErrNotExist
	case status == http.StatusUnauthorized:
		return errors.Wrapf(err, errors.CodeUnauthorized, "%s: unauthorized", provider)
	case status == http.StatusForbidden:
		return errors.Wrapf(err, errors.CodeForbidden, "%s: forbidden", provider)
	case status == http.StatusRequestTimeout:
		return errors.Wrapf(err, errors.CodeTimeout, "%s: request timeout", provider)
	case status == http.StatusTooManyRequests || status == 498:
		return errors.Wrapf(err, errors.CodeRateLimit, "%s: rate limited", provider)
	case status == http.StatusServiceUnavailable:
		return errors.Wrapf(err, errors.CodeUnavailable, "%s: unavailable", provider)
	}
	return errors.Wrapf(err, errors.CodeBackend, "%s: status %d", provider, status)
}

func transport(provider string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, errors.CodeTimeout, "%s: deadline exceeded", provider)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Wrapf(err, errors.CodeTimeout, "%s: network timeout", provider)
		}
		return errors.Wrapf(err, errors.CodeNetwork, "%s: network error", provider)
	}
	return errors.Wrap(err, errors.CodeBackend, provider)
}

// Backend wraps a failed backend operation on id for the caller. A code
// attached by the provider survives; uncoded failures become CodeBackend.
func Backend(err error, op, id string) error {
	if err == nil {
		return nil
	}
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.CodeBackend
	}
	return errors.WithContext(errors.Wrapf(err, code, "%s %s", op, id), "identifier", id)
}

// IsNotExist reports whether err signals a missing object.
func IsNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}

// IsUnsupported reports whether err signals an operation the backend does
// not offer.
func IsUnsupported(err error) bool {
	return stderrors.Is(err, core.ErrUnsupported)
}

// PathError wraps an error in a fs.PathError for the given operation and path.
// If the error is nil, returns nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf creates a fs.PathError with a formatted error message.
func PathErrorf(op, path, format string, args ...interface{}) error {
	return &fs.PathError{Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}
