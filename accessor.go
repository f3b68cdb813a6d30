package objfs

import (
	"context"
	"io"

	"github.com/jmgilman/objfs/cache"
	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// Mode selects how much of an object a fetch retrieves.
type Mode int

const (
	// ModeMetadata retrieves headers only.
	ModeMetadata Mode = iota
	// ModeFull retrieves headers and content.
	ModeFull
)

func (m Mode) prefix() cache.Prefix {
	if m == ModeFull {
		return cache.PrefixFull
	}
	return cache.PrefixPartial
}

// rootObject stands in for the root folder, which has no backing object.
func rootObject() *core.Object {
	return &core.Object{
		Name:        RootFolder,
		ContentType: core.DirectoryContentType,
		Directory:   true,
		Synthetic:   true,
	}
}

// Fetch returns the record of id, consulting the cache first. Absence is
// reported through the boolean, never as an error; backend failures are
// returned. Records are cached per mode and only when found.
func (d *Driver) Fetch(ctx context.Context, id string, mode Mode) (*core.Object, bool, error) {
	id = pathutil.Normalize(id)
	if pathutil.IsRoot(id) {
		return rootObject(), true, nil
	}

	if obj, ok := d.cache.Object(ctx, id, mode.prefix()); ok {
		return obj, true, nil
	}

	var (
		obj *core.Object
		err error
	)
	if mode == ModeFull {
		obj, err = d.download(ctx, id)
	} else {
		obj, err = d.backend.HeadObject(ctx, id)
	}
	if errs.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		err = errs.Backend(err, "fetch", id)
		d.log.Error(ctx, "fetch failed", "identifier", id, "error", err)
		return nil, false, err
	}

	d.cache.SetObject(ctx, id, mode.prefix(), obj)
	return obj, true, nil
}

// download reads id including its content.
func (d *Driver) download(ctx context.Context, id string) (*core.Object, error) {
	obj, rc, err := d.backend.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNetwork, "read content of %s", id)
	}
	obj.Content = content
	return obj, nil
}

// Exists reports whether an object is stored under id.
func (d *Driver) Exists(ctx context.Context, id string) (bool, error) {
	_, found, err := d.Fetch(ctx, id, ModeMetadata)
	return found, err
}

// FileExists reports whether id names an existing object that is not a
// directory.
func (d *Driver) FileExists(ctx context.Context, id string) (bool, error) {
	id = pathutil.Normalize(id)
	if pathutil.IsRoot(id) || pathutil.IsFolder(id) {
		return false, nil
	}
	obj, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil || !found {
		return false, err
	}
	return !core.IsDirectory(obj), nil
}

// FolderExists reports whether id names a folder. The root always exists.
// With ImplicitFolders, a folder without marker exists when it has
// descendants.
func (d *Driver) FolderExists(ctx context.Context, id string) (bool, error) {
	id = folderID(id)
	if pathutil.IsRoot(id) {
		return true, nil
	}
	obj, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil {
		return false, err
	}
	if found {
		return core.IsDirectory(obj), nil
	}
	if !d.opts.ImplicitFolders {
		return false, nil
	}
	children, err := d.list(ctx, id, false)
	if err != nil {
		return false, err
	}
	return len(children) > 0, nil
}

// FileExistsInFolder reports whether file name exists in folder.
func (d *Driver) FileExistsInFolder(ctx context.Context, name, folder string) (bool, error) {
	return d.FileExists(ctx, pathutil.JoinFile(folder, name))
}

// FolderExistsInFolder reports whether folder name exists in parent.
func (d *Driver) FolderExistsInFolder(ctx context.Context, name, parent string) (bool, error) {
	return d.FolderExists(ctx, pathutil.JoinFolder(parent, name))
}

// IsWithin reports whether id lies below folder and exists.
func (d *Driver) IsWithin(ctx context.Context, folder, id string) (bool, error) {
	if !pathutil.IsWithin(folder, id) {
		return false, nil
	}
	return d.Exists(ctx, id)
}

// FileInfo returns the info record of id.
// Returns a CodeNotFound error if id does not exist.
func (d *Driver) FileInfo(ctx context.Context, id string) (*FileInfo, error) {
	id = pathutil.Normalize(id)
	obj, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("file info", id)
	}
	return d.info(id, obj), nil
}

func (d *Driver) info(id string, obj *core.Object) *FileInfo {
	return &FileInfo{
		Name:           pathutil.Basename(id),
		Identifier:     id,
		ModTime:        obj.LastModified,
		Size:           obj.Bytes,
		MimeType:       obj.ContentType,
		IdentifierHash: sha1Hex(id),
		FolderHash:     sha1Hex(pathutil.FolderIdentifierForFile(id)),
		StorageID:      d.opts.StorageID,
	}
}

// ReadContent returns the content of id from the full record.
// Returns a CodeNotFound error if id does not exist.
func (d *Driver) ReadContent(ctx context.Context, id string) ([]byte, error) {
	obj, found, err := d.Fetch(ctx, id, ModeFull)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("read", pathutil.Normalize(id))
	}
	return obj.Content, nil
}
