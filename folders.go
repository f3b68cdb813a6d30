package objfs

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// TreeOp selects what MoveOrCopyFolder does with each object.
type TreeOp int

const (
	// TreeMove renames every object of the tree.
	TreeMove TreeOp = iota
	// TreeCopy copies every object of the tree.
	TreeCopy
)

func (op TreeOp) String() string {
	if op == TreeCopy {
		return "copy"
	}
	return "move"
}

// Mapping pairs an old identifier with its new one.
type Mapping struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// IdentityMap lists the identifiers changed by a folder operation in the
// order they were processed. The folder itself comes last.
type IdentityMap []Mapping

// Lookup returns the new identifier of from.
func (m IdentityMap) Lookup(from string) (string, bool) {
	for _, e := range m {
		if e.From == from {
			return e.To, true
		}
	}
	return "", false
}

// Map returns the mapping as a map.
func (m IdentityMap) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, e := range m {
		out[e.From] = e.To
	}
	return out
}

// CreateFolder creates folder name inside parent and returns its
// identifier.
func (d *Driver) CreateFolder(ctx context.Context, name, parent string) (string, error) {
	name = strings.Trim(name, pathutil.Separator)
	if name == "" {
		return "", errors.WithContext(errors.New(errors.CodeInvalidInput, "folder name is empty"), "parent", parent)
	}
	id := pathutil.JoinFolder(parent, name)
	if err := d.createMarker(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (d *Driver) createMarker(ctx context.Context, id string) error {
	return d.Create(ctx, id, bytes.NewReader(nil), core.PutOptions{ContentType: core.DirectoryContentType})
}

// DeleteFolder removes folder. Without recursive, only the folder marker is
// removed and a folder with children is refused. With recursive, the whole
// tree is removed through one bulk delete.
func (d *Driver) DeleteFolder(ctx context.Context, folder string, recursive bool) (bool, error) {
	folder = folderID(folder)
	if pathutil.IsRoot(folder) {
		return false, errors.New(errors.CodeInvalidInput, "cannot delete the root folder")
	}
	if recursive {
		if err := d.DeleteRecursive(ctx, folder); err != nil {
			return false, err
		}
		return true, nil
	}

	empty, err := d.IsFolderEmpty(ctx, folder)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, errors.WithContext(
			errors.Newf(errors.CodeInvalidInput, "folder %s is not empty", folder),
			"identifier", folder,
		)
	}
	return d.deleteObject(ctx, folder)
}

// DeleteRecursive removes folder and everything below it. Keys that could
// not be deleted are reported through a CodePartialFailure error whose
// context holds failed_keys.
func (d *Driver) DeleteRecursive(ctx context.Context, folder string) error {
	folder = folderID(folder)
	objs, err := d.listFresh(ctx, folder, true)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(objs))
	for _, obj := range objs {
		if err := d.invalidate(ctx, obj.Name); err != nil {
			return err
		}
		keys = append(keys, obj.Name)
	}
	if err := d.cache.InvalidatePath(ctx, folder); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	res, err := d.backend.BulkDelete(ctx, keys)
	if err != nil {
		err = errors.WithContext(errors.Wrapf(err, errors.CodeBackend, "bulk delete %s", folder), "identifier", folder)
		d.log.Error(ctx, "bulk delete failed", "identifier", folder, "error", err)
		return err
	}
	if !res.OK() {
		failed := res.FailedKeys()
		sort.Strings(failed)
		d.log.Warn(ctx, "bulk delete incomplete",
			"identifier", folder,
			"deleted", res.Deleted,
			"failed", len(failed))
		return errors.WithContextMap(
			errors.Newf(errors.CodePartialFailure, "bulk delete %s: %d of %d keys failed", folder, len(failed), len(keys)),
			map[string]interface{}{"identifier": folder, "failed_keys": failed},
		)
	}

	d.log.Info(ctx, "folder deleted", "identifier", folder, "objects", len(keys))
	return nil
}

// MoveFolder moves folder into targetParent under newName.
func (d *Driver) MoveFolder(ctx context.Context, folder, targetParent, newName string) (IdentityMap, error) {
	return d.MoveOrCopyFolder(ctx, folder, pathutil.JoinFolder(targetParent, newName), TreeMove)
}

// CopyFolder copies folder into targetParent under newName.
func (d *Driver) CopyFolder(ctx context.Context, folder, targetParent, newName string) (IdentityMap, error) {
	return d.MoveOrCopyFolder(ctx, folder, pathutil.JoinFolder(targetParent, newName), TreeCopy)
}

// RenameFolder renames folder within its parent.
func (d *Driver) RenameFolder(ctx context.Context, folder, newName string) (IdentityMap, error) {
	folder = folderID(folder)
	return d.MoveOrCopyFolder(ctx, folder, pathutil.JoinFolder(pathutil.ParentOf(folder), newName), TreeMove)
}

// MoveOrCopyFolder applies op to every object below src, rebasing it onto
// dst. Descendants are snapshotted first and processed in snapshot order;
// the folder marker is processed last. When the source marker does not
// exist the target marker is created. On failure the returned map holds the
// entries completed so far.
func (d *Driver) MoveOrCopyFolder(ctx context.Context, src, dst string, op TreeOp) (IdentityMap, error) {
	src, dst = folderID(src), folderID(dst)
	switch {
	case pathutil.IsRoot(src):
		return nil, errors.Newf(errors.CodeInvalidInput, "cannot %s the root folder", op)
	case pathutil.IsRoot(dst):
		return nil, errors.WithContext(errors.Newf(errors.CodeInvalidInput, "invalid target folder %q", dst), "target", dst)
	case src == dst || strings.HasPrefix(dst, src):
		return nil, errors.WithContextMap(
			errors.Newf(errors.CodeInvalidInput, "cannot %s %s into itself", op, src),
			map[string]interface{}{"identifier": src, "target": dst},
		)
	}

	snapshot, err := d.listFresh(ctx, src, true)
	if err != nil {
		return nil, err
	}

	var (
		entries   []Mapping
		hasMarker bool
	)
	for _, obj := range snapshot {
		if obj.Name == src {
			hasMarker = true
			continue
		}
		entries = append(entries, Mapping{From: obj.Name, To: pathutil.Rebase(obj.Name, src, dst)})
	}

	done := make([]bool, len(entries))
	err = d.applyTree(ctx, entries, done, op)

	result := make(IdentityMap, 0, len(entries)+1)
	for i, e := range entries {
		if done[i] {
			result = append(result, e)
		}
	}
	if err != nil {
		d.log.Error(ctx, "folder "+op.String()+" failed",
			"identifier", src,
			"target", dst,
			"completed", len(result),
			"error", err)
		return result, err
	}

	if hasMarker {
		err = d.applyOne(ctx, Mapping{From: src, To: dst}, op)
	} else {
		err = d.createMarker(ctx, dst)
	}
	if err != nil {
		return result, err
	}
	result = append(result, Mapping{From: src, To: dst})

	d.log.Info(ctx, "folder "+op.String()+" complete", "identifier", src, "target", dst, "objects", len(result))
	return result, nil
}

// applyTree processes entries in order, or with bounded parallelism when
// FolderConcurrency is above one. done records the completed entries.
func (d *Driver) applyTree(ctx context.Context, entries []Mapping, done []bool, op TreeOp) error {
	if d.opts.FolderConcurrency <= 1 {
		for i, e := range entries {
			if err := d.applyOne(ctx, e, op); err != nil {
				return err
			}
			done[i] = true
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.FolderConcurrency)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := d.applyOne(gctx, e, op); err != nil {
				return err
			}
			done[i] = true
			return nil
		})
	}
	return g.Wait()
}

func (d *Driver) applyOne(ctx context.Context, e Mapping, op TreeOp) error {
	var err error
	if op == TreeCopy {
		_, err = d.Copy(ctx, e.From, e.To)
	} else {
		_, err = d.Rename(ctx, e.From, e.To)
	}
	return err
}
