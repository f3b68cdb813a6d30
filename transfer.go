package objfs

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
	"github.com/jmgilman/objfs/internal/types"
	"github.com/jmgilman/objfs/internal/walk"
)

// CopyToLocal downloads id into a new temporary file and returns its path.
// Content is streamed in ChunkSize reads. The caller owns the file.
// Returns a CodeNotFound error if id does not exist.
func (d *Driver) CopyToLocal(ctx context.Context, id string) (string, error) {
	id = pathutil.Normalize(id)
	_, rc, err := d.backend.GetObject(ctx, id)
	if errs.IsNotExist(err) {
		return "", notFound("copy to local", id)
	}
	if err != nil {
		return "", errs.Backend(err, "copy to local", id)
	}
	defer func() { _ = rc.Close() }()

	dir := d.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	local := filepath.Join(dir, "objfs-"+uuid.NewString()+path.Ext(id))

	f, err := os.OpenFile(local, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", errors.WithContext(errors.Wrap(err, errors.CodeInternal, "create local copy"), "path", local)
	}

	if err := d.pipe(rc, f); err != nil {
		_ = f.Close()
		_ = os.Remove(local)
		return "", errors.WithContext(errors.Wrapf(err, errors.CodeNetwork, "copy %s to local file", id), "identifier", id)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(local)
		return "", errors.WithContext(errors.Wrap(err, errors.CodeInternal, "close local copy"), "path", local)
	}

	d.log.Debug(ctx, "object copied to local file", "identifier", id, "path", local)
	return local, nil
}

// pipe copies src to dst in ChunkSize reads.
func (d *Driver) pipe(src io.Reader, dst io.Writer) error {
	// Hide ReaderFrom and WriterTo so the buffer size holds.
	_, err := io.CopyBuffer(writerOnly{dst}, readerOnly{src}, make([]byte, d.opts.ChunkSize))
	return err
}

type readerOnly struct{ io.Reader }

type writerOnly struct{ io.Writer }

// AddFile uploads the local file into folder and returns the new info.
// An empty name keeps the local base name. An existing object is
// overwritten; the content type is detected from the content.
func (d *Driver) AddFile(ctx context.Context, localPath, folder, name string) (*FileInfo, error) {
	if name == "" {
		name = filepath.Base(localPath)
	}
	if err := pathutil.CheckFileName(name); err != nil {
		return nil, err
	}
	id := pathutil.JoinFile(folder, name)

	existing, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil {
		return nil, err
	}
	if found && core.IsDirectory(existing) {
		return nil, isDirectory("add file", id)
	}

	if err := d.upload(ctx, id, localPath, ""); err != nil {
		return nil, err
	}
	return d.FileInfo(ctx, id)
}

// ReplaceFile replaces the content of the existing file id with the local
// file. The stored content type is kept.
// Returns a CodeNoSuchFile error if id does not exist.
func (d *Driver) ReplaceFile(ctx context.Context, id, localPath string) error {
	id = pathutil.Normalize(id)
	obj, found, err := d.Fetch(ctx, id, ModeMetadata)
	if err != nil {
		return err
	}
	if !found {
		return errors.WithContext(
			errors.Newf(errors.CodeNoSuchFile, "cannot replace %s: no such file", id),
			"identifier", id,
		)
	}
	if core.IsDirectory(obj) {
		return isDirectory("replace", id)
	}
	return d.upload(ctx, id, localPath, obj.ContentType)
}

// upload stores the local file under id. An empty content type is detected.
func (d *Driver) upload(ctx context.Context, id, localPath, contentType string) error {
	if contentType == "" {
		mt, err := mimetype.DetectFile(localPath)
		if err != nil {
			return errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "read local file"), "path", localPath)
		}
		contentType = mt.String()
	}

	f, err := os.Open(localPath) // #nosec G304 -- caller supplied upload source
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "open local file"), "path", localPath)
	}
	defer func() { _ = f.Close() }()

	return d.Create(ctx, id, f, core.PutOptions{ContentType: contentType})
}

// CopyFolderFromStorage copies folder of src into targetParent of d under
// newName. Folders are created before their contents and file content is
// streamed between the backends.
func (d *Driver) CopyFolderFromStorage(ctx context.Context, src *Driver, folder, targetParent, newName string) (string, error) {
	folder = folderID(folder)
	target, err := d.CreateFolder(ctx, newName, targetParent)
	if err != nil {
		return "", err
	}

	list := func(ctx context.Context, f string) ([]types.Item, error) {
		objs, err := src.list(ctx, f, false)
		if err != nil {
			return nil, err
		}
		items := make([]types.Item, 0, len(objs))
		for _, obj := range objs {
			if item, ok := types.ProjectFolder.Apply(obj, src.opts.StorageID); ok {
				items = append(items, item)
			} else if item, ok := types.ProjectFile.Apply(obj, src.opts.StorageID); ok {
				items = append(items, item)
			}
		}
		return items, nil
	}

	err = walk.Tree(ctx, folder, list, func(id string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := pathutil.Rebase(id, folder, target)
		if entry.IsDir() {
			return d.createMarker(ctx, rel)
		}
		return d.streamFrom(ctx, src, id, rel)
	})
	if err != nil {
		return target, err
	}

	d.log.Info(ctx, "folder copied between storages",
		"identifier", folder,
		"source", src.raw.Container(),
		"target", target)
	return target, nil
}

// streamFrom copies the object id of src into d under target.
func (d *Driver) streamFrom(ctx context.Context, src *Driver, id, target string) error {
	obj, rc, err := src.backend.GetObject(ctx, id)
	if errs.IsNotExist(err) {
		return notFound("copy between storages", id)
	}
	if err != nil {
		return errs.Backend(err, "copy between storages", id)
	}
	defer func() { _ = rc.Close() }()
	return d.Create(ctx, target, rc, core.PutOptions{ContentType: obj.ContentType})
}
