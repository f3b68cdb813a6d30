package objfs

import (
	"bytes"
	"context"
	"io"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// Create stores the content of r under id, replacing any existing object.
func (d *Driver) Create(ctx context.Context, id string, r io.Reader, opts core.PutOptions) error {
	id = pathutil.Normalize(id)
	if pathutil.IsRoot(id) {
		return errors.New(errors.CodeInvalidInput, "cannot write the root folder")
	}
	if err := d.invalidate(ctx, id); err != nil {
		return err
	}
	if err := d.backend.PutObject(ctx, id, r, opts); err != nil {
		err = errs.Backend(err, "create", id)
		d.log.Error(ctx, "create failed", "identifier", id, "error", err)
		return err
	}
	d.log.Info(ctx, "object created", "identifier", id)
	return nil
}

// CreateFile creates an empty file name in folder and returns its info.
func (d *Driver) CreateFile(ctx context.Context, name, folder string) (*FileInfo, error) {
	if err := pathutil.CheckFileName(name); err != nil {
		return nil, err
	}
	id := pathutil.JoinFile(folder, name)
	if err := d.Create(ctx, id, bytes.NewReader(nil), core.PutOptions{}); err != nil {
		return nil, err
	}
	return d.FileInfo(ctx, id)
}

// SetContents replaces the content of the existing object id and returns
// the number of bytes written. The content type is kept.
// Returns a CodeNoSuchFile error if id does not exist.
func (d *Driver) SetContents(ctx context.Context, id string, content []byte) (int64, error) {
	id = pathutil.Normalize(id)
	obj, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.WithContext(
			errors.Newf(errors.CodeNoSuchFile, "cannot overwrite %s: no such file", id),
			"identifier", id,
		)
	}
	if core.IsDirectory(obj) {
		return 0, isDirectory("overwrite", id)
	}

	if err := d.backend.PutObject(ctx, id, bytes.NewReader(content), core.PutOptions{ContentType: obj.ContentType}); err != nil {
		err = errs.Backend(err, "overwrite", id)
		d.log.Error(ctx, "overwrite failed", "identifier", id, "error", err)
		return 0, err
	}
	if err := d.invalidate(ctx, id); err != nil {
		return 0, err
	}
	d.log.Info(ctx, "object overwritten", "identifier", id, "bytes", len(content))
	return int64(len(content)), nil
}

// Delete removes the file id. It reports false without error when id is
// already absent and refuses to delete folder markers.
func (d *Driver) Delete(ctx context.Context, id string) (bool, error) {
	id = pathutil.Normalize(id)
	obj, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil || !found {
		return false, err
	}
	if core.IsDirectory(obj) {
		return false, isDirectory("delete", id)
	}
	return d.deleteObject(ctx, id)
}

// deleteObject removes id without checking its kind.
func (d *Driver) deleteObject(ctx context.Context, id string) (bool, error) {
	err := d.backend.DeleteObject(ctx, id)
	if err != nil && !errs.IsNotExist(err) {
		err = errs.Backend(err, "delete", id)
		d.log.Error(ctx, "delete failed", "identifier", id, "error", err)
		return false, err
	}
	if ierr := d.invalidate(ctx, id); ierr != nil {
		return false, ierr
	}
	if err != nil {
		return false, nil
	}
	d.log.Info(ctx, "object deleted", "identifier", id)
	return true, nil
}

// Copy copies src to dst on the server side and returns the record of dst.
// Returns a CodeNotFound error if src does not exist.
func (d *Driver) Copy(ctx context.Context, src, dst string) (*core.Object, error) {
	src, dst = pathutil.Normalize(src), pathutil.Normalize(dst)
	obj, found, err := d.Fetch(ctx, src, ModeMetadata)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("copy", src)
	}
	if src == dst {
		return obj, nil
	}

	if err := d.backend.CopyObject(ctx, src, dst); err != nil {
		err = errors.WithContext(errs.Backend(err, "copy", src), "target", dst)
		d.log.Error(ctx, "copy failed", "identifier", src, "target", dst, "error", err)
		return nil, err
	}
	if err := d.invalidate(ctx, dst); err != nil {
		return nil, err
	}

	target, err := d.backend.HeadObject(ctx, dst)
	switch {
	case errs.IsNotExist(err):
		// Not yet visible; derive the record from the source.
		target = obj.Clone()
		target.Name = dst
	case err != nil:
		return nil, errs.Backend(err, "copy", dst)
	default:
		d.cache.SetObject(ctx, dst, ModeMetadata.prefix(), target)
	}

	d.log.Info(ctx, "object copied", "identifier", src, "target", dst)
	return target, nil
}

// Rename moves src to dst by copying and deleting the source. The source is
// never deleted when the copy fails. A failed source delete after a
// successful copy is returned together with the target record, leaving both
// objects in place. Renaming an object onto itself only checks that it
// exists.
func (d *Driver) Rename(ctx context.Context, src, dst string) (*core.Object, error) {
	src, dst = pathutil.Normalize(src), pathutil.Normalize(dst)
	target, err := d.Copy(ctx, src, dst)
	if err != nil || src == dst {
		return target, err
	}
	if _, err := d.deleteObject(ctx, src); err != nil {
		d.log.Warn(ctx, "source retained after rename", "identifier", src, "target", dst, "error", err)
		return target, errors.WithContext(err, "target", dst)
	}
	return target, nil
}

// RenameFile renames the file id within its folder and returns the new
// identifier. The new name is sanitized.
func (d *Driver) RenameFile(ctx context.Context, id, newName string) (string, error) {
	name, err := pathutil.SanitizeFileName(newName)
	if err != nil {
		return "", err
	}
	id = pathutil.Normalize(id)
	target := pathutil.JoinFile(pathutil.ParentOf(id), name)
	if _, err := d.Rename(ctx, id, target); err != nil {
		return "", err
	}
	return target, nil
}

// MoveFile moves the file id into folder. An empty name keeps the base name.
func (d *Driver) MoveFile(ctx context.Context, id, folder, name string) (string, error) {
	target, err := targetFile(id, folder, name)
	if err != nil {
		return "", err
	}
	if _, err := d.Rename(ctx, pathutil.Normalize(id), target); err != nil {
		return "", err
	}
	return target, nil
}

// CopyFile copies the file id into folder and returns the info of the copy.
// An empty name keeps the base name.
func (d *Driver) CopyFile(ctx context.Context, id, folder, name string) (*FileInfo, error) {
	target, err := targetFile(id, folder, name)
	if err != nil {
		return nil, err
	}
	obj, err := d.Copy(ctx, id, target)
	if err != nil {
		return nil, err
	}
	return d.info(target, obj), nil
}

func targetFile(id, folder, name string) (string, error) {
	if name == "" {
		name = pathutil.Basename(pathutil.Normalize(id))
	}
	if err := pathutil.CheckFileName(name); err != nil {
		return "", err
	}
	return pathutil.JoinFile(folder, name), nil
}

func isDirectory(op, id string) error {
	return errors.WithContext(
		errors.Newf(errors.CodeIsDirectory, "%s %s: is a directory", op, id),
		"identifier", id,
	)
}
