// Package errors provides the structured errors returned by objfs.
//
// Every failure that crosses a package boundary carries an ErrorCode and a
// classification (retryable or permanent). The package stays compatible with
// the standard library (errors.Is, errors.As, errors.Unwrap), so backend
// sentinel errors such as io/fs.ErrNotExist remain reachable through the
// chain.
//
// # Error Codes
//
//   - Lookup: CodeNotFound, CodeNoSuchFile, CodeIsDirectory
//   - Validation: CodeInvalidInput, CodeInvalidConfig
//   - Backend: CodeBackend, CodeNetwork, CodeTimeout, CodeRateLimit,
//     CodeUnavailable, CodePartialFailure
//   - Permission: CodeUnauthorized, CodeForbidden
//   - Processing: CodeHashFailed, CodeInternal
//   - Generic: CodeUnknown
//
// A missing object is usually not an error in objfs: accessor and existence
// checks report absence through a boolean. CodeNotFound is reserved for
// operations whose contract requires the object to exist, while
// CodeNoSuchFile marks caller misuse such as overwriting an object that was
// never created.
//
// # Usage
//
//	obj, found, err := d.Stat(ctx, "docs/report.pdf")
//	if err != nil {
//	    if errors.IsRetryable(err) {
//	        // back off and retry
//	    }
//	    return err
//	}
//
// Wrapping a backend failure:
//
//	if err := backend.PutObject(ctx, key, r, opts); err != nil {
//	    return errors.Wrapf(err, errors.CodeBackend, "put %s", key)
//	}
package errors
