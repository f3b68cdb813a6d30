package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Lookup errors.

	// CodeNotFound indicates a requested object or folder does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeNoSuchFile indicates a mutation targeted an object that must already
	// exist (for example, overwriting content). Unlike CodeNotFound this is a
	// caller error, not an absence report.
	CodeNoSuchFile ErrorCode = "NO_SUCH_FILE"

	// CodeIsDirectory indicates a file operation was attempted on a folder marker.
	CodeIsDirectory ErrorCode = "IS_DIRECTORY"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Backend errors.

	// CodeBackend indicates the object store rejected or failed a request.
	CodeBackend ErrorCode = "BACKEND_FAILURE"

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeRateLimit indicates the backend throttled the request.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeUnavailable indicates the backend is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// CodePartialFailure indicates a bulk operation completed for some keys only.
	CodePartialFailure ErrorCode = "PARTIAL_FAILURE"

	// Permission errors.

	// CodeUnauthorized indicates the backend rejected the credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Processing errors.

	// CodeHashFailed indicates a content hash could not be computed.
	CodeHashFailed ErrorCode = "HASH_FAILED"

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification indicates whether an error should trigger a retry.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeBackend:     ClassificationRetryable,
	CodeNetwork:     ClassificationRetryable,
	CodeTimeout:     ClassificationRetryable,
	CodeRateLimit:   ClassificationRetryable,
	CodeUnavailable: ClassificationRetryable,

	CodeNotFound:       ClassificationPermanent,
	CodeNoSuchFile:     ClassificationPermanent,
	CodeIsDirectory:    ClassificationPermanent,
	CodeInvalidInput:   ClassificationPermanent,
	CodeInvalidConfig:  ClassificationPermanent,
	CodePartialFailure: ClassificationPermanent,
	CodeUnauthorized:   ClassificationPermanent,
	CodeForbidden:      ClassificationPermanent,
	CodeHashFailed:     ClassificationPermanent,
	CodeInternal:       ClassificationPermanent,
	CodeUnknown:        ClassificationPermanent,
}

// getDefaultClassification returns the default classification for an error code.
// Unknown codes are permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
