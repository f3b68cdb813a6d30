// Package types provides the listing and info records produced by objfs.
package types // nolint:revive // Internal package with clear purpose

import (
	"io/fs"
	"strings"
	"time"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// Item is a projected listing entry.
type Item struct {
	Name       string    `json:"name" yaml:"name"`
	Identifier string    `json:"identifier" yaml:"identifier"`
	Size       int64     `json:"size,omitempty" yaml:"size,omitempty"`
	ModTime    time.Time `json:"mtime,omitempty" yaml:"mtime,omitempty"`
	MimeType   string    `json:"mimetype,omitempty" yaml:"mimetype,omitempty"`
	StorageID  string    `json:"storage,omitempty" yaml:"storage,omitempty"`
	Folder     bool      `json:"folder,omitempty" yaml:"folder,omitempty"`
}

// IsZero reports whether the item is empty.
func (i Item) IsZero() bool {
	return i.Identifier == "" && i.Name == ""
}

// Info describes a single object the way callers index it.
type Info struct {
	Name           string    `json:"name" yaml:"name"`
	Identifier     string    `json:"identifier" yaml:"identifier"`
	ModTime        time.Time `json:"mtime" yaml:"mtime"`
	Size           int64     `json:"size" yaml:"size"`
	MimeType       string    `json:"mimetype" yaml:"mimetype"`
	IdentifierHash string    `json:"identifier_hash" yaml:"identifier_hash"`
	FolderHash     string    `json:"folder_hash" yaml:"folder_hash"`
	StorageID      string    `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// Permissions are the access rights reported for an identifier.
type Permissions struct {
	Read  bool `json:"r" yaml:"r"`
	Write bool `json:"w" yaml:"w"`
}

// Projection selects how listed objects become items.
type Projection int

const (
	// ProjectFile produces full file items and drops folders.
	ProjectFile Projection = iota
	// ProjectIdentifier produces name and identifier only and drops folders.
	ProjectIdentifier
	// ProjectFolder produces folder items and drops files.
	ProjectFolder
)

// Apply projects obj. The boolean is false when obj does not belong in the
// projection.
func (p Projection) Apply(obj *core.Object, storageID string) (Item, bool) {
	if obj == nil {
		return Item{}, false
	}
	isDir := core.IsDirectory(obj)

	switch p {
	case ProjectFolder:
		if !isDir {
			return Item{}, false
		}
		id := obj.Name
		if !strings.HasSuffix(id, pathutil.Separator) {
			id += pathutil.Separator
		}
		return Item{
			Name:       pathutil.Basename(id),
			Identifier: id,
			StorageID:  storageID,
			Folder:     true,
		}, true
	case ProjectIdentifier:
		if isDir {
			return Item{}, false
		}
		return Item{Name: pathutil.Basename(obj.Name), Identifier: obj.Name}, true
	default:
		if isDir {
			return Item{}, false
		}
		return Item{
			Name:       pathutil.Basename(obj.Name),
			Identifier: obj.Name,
			Size:       obj.Bytes,
			ModTime:    obj.LastModified,
			MimeType:   obj.ContentType,
			StorageID:  storageID,
		}, true
	}
}

// FileInfo implements fs.FileInfo for listed items.
type FileInfo struct {
	FileName    string
	FileSize    int64
	FileModTime time.Time
	FileMode    fs.FileMode
}

// Name returns the name of the file.
func (fi *FileInfo) Name() string { return fi.FileName }

// Size returns the length in bytes for regular files.
func (fi *FileInfo) Size() int64 { return fi.FileSize }

// Mode returns the file mode bits.
func (fi *FileInfo) Mode() fs.FileMode { return fi.FileMode }

// ModTime returns the modification time.
func (fi *FileInfo) ModTime() time.Time { return fi.FileModTime }

// IsDir returns true if this describes a folder.
func (fi *FileInfo) IsDir() bool { return fi.FileMode&fs.ModeDir != 0 }

// Sys returns the underlying data source (always nil for object stores).
func (fi *FileInfo) Sys() interface{} { return nil }

// DirEntry implements fs.DirEntry over an Item.
type DirEntry struct {
	Item Item
}

// NewDirEntry wraps item.
func NewDirEntry(item Item) *DirEntry {
	return &DirEntry{Item: item}
}

// Name returns the name of the entry.
func (e *DirEntry) Name() string { return e.Item.Name }

// IsDir reports whether the entry describes a folder.
func (e *DirEntry) IsDir() bool { return e.Item.Folder }

// Type returns the type bits for the entry.
func (e *DirEntry) Type() fs.FileMode {
	if e.Item.Folder {
		return fs.ModeDir
	}
	return 0
}

// Info returns the FileInfo for the entry.
func (e *DirEntry) Info() (fs.FileInfo, error) {
	mode := fs.FileMode(0644)
	if e.Item.Folder {
		mode = fs.ModeDir | 0755
	}
	return &FileInfo{
		FileName:    e.Item.Name,
		FileSize:    e.Item.Size,
		FileModTime: e.Item.ModTime,
		FileMode:    mode,
	}, nil
}

// Compile-time interface checks.
var (
	_ fs.FileInfo = (*FileInfo)(nil)
	_ fs.DirEntry = (*DirEntry)(nil)
)
