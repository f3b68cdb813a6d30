// Package core defines the object model and the backend capability contract
// shared by every objfs storage provider.
//
// An object store has no folders. objfs emulates them with zero-byte marker
// objects whose key ends in "/" and whose content type is
// DirectoryContentType. A Backend only moves flat objects around; all folder
// semantics live in the objfs driver.
//
// # Backend contract
//
// Providers implement Backend. Missing objects are reported with
// ErrNotExist (an alias of io/fs.ErrNotExist) so callers can rely on
// errors.Is regardless of provider:
//
//	obj, err := backend.HeadObject(ctx, "docs/report.pdf")
//	if errors.Is(err, core.ErrNotExist) {
//	    // absent
//	}
//
// Providers that can produce public or signed URLs also implement
// URLBackend. Providers that can create their container implement
// ContainerEnsurer.
//
// # Listing
//
// ListObjects with Recursive set returns every object whose key starts with
// the prefix. Without it, only the direct children of the prefix are
// returned; providers report sub folders that exist only implicitly as
// Synthetic objects with Directory set.
package core
