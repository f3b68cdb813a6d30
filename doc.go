// Package objfs presents a flat object store as a hierarchical filesystem.
//
// A Driver sits on top of a core.Backend (Swift, S3-compatible or in-memory)
// and emulates folders through zero-byte marker objects whose keys end with
// "/" and whose content type is application/directory. Metadata reads and
// listings are memoized in a cache.Store and invalidated whenever the driver
// mutates an object.
//
// Identifiers are object keys without a leading slash. The root folder is the
// distinguished identifier "/".
//
// Basic usage:
//
//	backend := memory.New("assets")
//	drv, err := objfs.New(ctx, backend, objfs.Options{})
//	if err != nil {
//	    return err
//	}
//	id, err := drv.CreateFolder(ctx, "images", objfs.RootFolder)
//	items, err := drv.ListFiles(ctx, id, objfs.ListOptions{Recursive: true})
package objfs
