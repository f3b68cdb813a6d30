package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "file name is empty")

	require.Equal(t, CodeInvalidInput, err.Code())
	require.Equal(t, "file name is empty", err.Message())
	require.Equal(t, ClassificationPermanent, err.Classification())
	require.Nil(t, err.Unwrap())
	require.Equal(t, "[INVALID_INPUT] file name is empty", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeNoSuchFile, "object %q does not exist", "a/b.txt")
	require.Equal(t, `object "a/b.txt" does not exist`, err.Message())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(cause, CodeBackend, "put failed")

	require.Equal(t, CodeBackend, err.Code())
	require.Equal(t, cause, err.Unwrap())
	require.True(t, err.Classification().IsRetryable())
	require.Equal(t, "[BACKEND_FAILURE] put failed: connection reset", err.Error())
}

func TestWrap_NilError(t *testing.T) {
	require.Nil(t, Wrap(nil, CodeBackend, "test"))
	require.Nil(t, Wrapf(nil, CodeBackend, "test %d", 1))
}

func TestWrap_PreservesClassification(t *testing.T) {
	original := New(CodeNoSuchFile, "missing")
	wrapped := Wrap(original, CodeBackend, "overwrite failed")

	require.Equal(t, CodeBackend, wrapped.Code())
	require.False(t, wrapped.Classification().IsRetryable())
}

func TestWrap_KeepsSentinelReachable(t *testing.T) {
	err := Wrapf(fs.ErrNotExist, CodeNotFound, "head %s", "a.txt")
	require.True(t, Is(err, fs.ErrNotExist))
}

func TestWithContext(t *testing.T) {
	err := WithContext(New(CodePartialFailure, "bulk delete"), "failed_keys", []string{"a", "b"})
	err = WithContext(err, "container", "media")

	ctx := err.Context()
	require.Equal(t, []string{"a", "b"}, ctx["failed_keys"])
	require.Equal(t, "media", ctx["container"])

	// Context is a copy.
	ctx["container"] = "other"
	require.Equal(t, "media", err.Context()["container"])
}

func TestWithContext_StandardError(t *testing.T) {
	err := WithContext(stderrors.New("boom"), "k", "v")
	require.Equal(t, CodeUnknown, err.Code())
	require.Equal(t, "v", err.Context()["k"])
}

func TestWithClassification(t *testing.T) {
	err := WithClassification(New(CodeNotFound, "gone"), ClassificationRetryable)
	require.True(t, IsRetryable(err))
	require.Equal(t, CodeNotFound, GetCode(err))
}

func TestHelpers(t *testing.T) {
	require.Equal(t, CodeUnknown, GetCode(nil))
	require.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	require.False(t, IsRetryable(nil))
	require.False(t, HasCode(nil, CodeUnknown))

	for _, code := range []ErrorCode{CodeBackend, CodeNetwork, CodeTimeout, CodeRateLimit, CodeUnavailable} {
		require.True(t, IsRetryable(New(code, "x")), code)
	}
	for _, code := range []ErrorCode{CodeNotFound, CodeInvalidInput, CodeIsDirectory, CodeHashFailed, ErrorCode("CUSTOM")} {
		require.False(t, IsRetryable(New(code, "x")), code)
	}

	var pe PlatformError
	require.True(t, As(Wrap(New(CodeIsDirectory, "dir"), CodeInvalidInput, "outer"), &pe))
	require.Equal(t, CodeInvalidInput, pe.Code())
}
