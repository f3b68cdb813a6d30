package objfs

import (
	"context"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/collate"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
	"github.com/jmgilman/objfs/internal/types"
)

// Filter decides whether a listing item is kept. name is the item's base
// name, identifier its full identifier and parent the folder being listed.
// Returning false drops the item.
type Filter func(name, identifier, parent string, item Item) bool

// ListOptions configures a listing.
type ListOptions struct {
	// Recursive lists all descendants instead of direct children.
	Recursive bool

	// Filters are applied in order; any of them may drop an item.
	Filters []Filter
}

// ExcludeHidden drops items whose name starts with a dot.
func ExcludeHidden(name, _, _ string, _ Item) bool {
	return !strings.HasPrefix(name, ".")
}

// MatchName keeps items whose name matches a path.Match pattern.
// A malformed pattern drops everything.
func MatchName(pattern string) Filter {
	return func(name, _, _ string, _ Item) bool {
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
}

// ListFiles lists the files in folder.
func (d *Driver) ListFiles(ctx context.Context, folder string, opts ListOptions) ([]Item, error) {
	return d.project(ctx, folder, opts, types.ProjectFile)
}

// ListFileIdentifiers lists the files in folder with name and identifier
// only.
func (d *Driver) ListFileIdentifiers(ctx context.Context, folder string, opts ListOptions) ([]Item, error) {
	return d.project(ctx, folder, opts, types.ProjectIdentifier)
}

// ListFolders lists the folders in folder.
func (d *Driver) ListFolders(ctx context.Context, folder string, opts ListOptions) ([]Item, error) {
	return d.project(ctx, folder, opts, types.ProjectFolder)
}

// IsFolderEmpty reports whether folder has no direct children.
func (d *Driver) IsFolderEmpty(ctx context.Context, folder string) (bool, error) {
	children, err := d.list(ctx, folder, false)
	if err != nil {
		return false, err
	}
	return len(children) == 0, nil
}

func (d *Driver) project(ctx context.Context, folder string, opts ListOptions, p types.Projection) ([]Item, error) {
	folder = folderID(folder)
	objs, err := d.list(ctx, folder, opts.Recursive)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(objs))
	for _, obj := range objs {
		item, ok := p.Apply(obj, d.opts.StorageID)
		if !ok || item.Identifier == folder {
			continue
		}
		if !keep(item, folder, opts.Filters) {
			continue
		}
		items = append(items, item)
	}

	d.sortItems(items, folder)
	return items, nil
}

func keep(item Item, parent string, filters []Filter) bool {
	for _, f := range filters {
		if !f(item.Name, item.Identifier, parent, item) {
			return false
		}
	}
	return true
}

// list returns the objects below folder, consulting the listing cache.
// Direct listings never include the folder's own marker.
func (d *Driver) list(ctx context.Context, folder string, recursive bool) ([]*core.Object, error) {
	folder = folderID(folder)
	if objs, ok := d.cache.Listing(ctx, folder, recursive); ok {
		return objs, nil
	}
	return d.listFresh(ctx, folder, recursive)
}

// listFresh lists folder from the backend and refreshes the caches.
// Real objects seen in the listing are cached as metadata records.
func (d *Driver) listFresh(ctx context.Context, folder string, recursive bool) ([]*core.Object, error) {
	folder = folderID(folder)
	prefix := pathutil.FolderPrefix(folder)

	objs, err := d.backend.ListObjects(ctx, core.ListOptions{Prefix: prefix, Recursive: recursive})
	if err != nil {
		err = errs.Backend(err, "list", folder)
		d.log.Error(ctx, "listing failed", "folder", folder, "error", err)
		return nil, err
	}

	out := make([]*core.Object, 0, len(objs))
	for _, obj := range objs {
		if !recursive && prefix != "" && obj.Name == prefix {
			continue
		}
		if !obj.Synthetic {
			d.cache.SetObject(ctx, obj.Name, ModeMetadata.prefix(), obj)
		}
		out = append(out, obj)
	}

	d.cache.SetListing(ctx, folder, recursive, out)
	return out, nil
}

// sortItems orders items by their path relative to folder. Folders sort
// before files on the same level and names compare numerically, so "2"
// comes before "10".
func (d *Driver) sortItems(items []Item, folder string) {
	col := collate.New(d.opts.tag(), collate.Numeric, collate.IgnoreCase)
	prefix := pathutil.FolderPrefix(folder)
	rel := func(it Item) string {
		return strings.TrimSuffix(strings.TrimPrefix(it.Identifier, prefix), pathutil.Separator)
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := comparePaths(col, rel(items[i]), rel(items[j]))
		if c == 0 {
			return items[i].Identifier < items[j].Identifier
		}
		return c < 0
	})
}

// comparePaths compares two relative paths segment by segment. An entry
// nested deeper than the other at the first differing level sorts first.
func comparePaths(col *collate.Collator, a, b string) int {
	for {
		headA, restA, nestedA := strings.Cut(a, pathutil.Separator)
		headB, restB, nestedB := strings.Cut(b, pathutil.Separator)
		switch {
		case nestedA && !nestedB:
			return -1
		case !nestedA && nestedB:
			return 1
		case !nestedA:
			return col.CompareString(a, b)
		}
		if headA != headB {
			return col.CompareString(headA, headB)
		}
		a, b = restA, restB
	}
}
