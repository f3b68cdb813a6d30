package core

import (
	"strings"
	"time"
)

// DirectoryContentType is the content type of folder marker objects.
const DirectoryContentType = "application/directory"

// Object is a backend-observed object record.
type Object struct {
	// Name is the object key, which doubles as its identifier.
	Name string `json:"name" yaml:"name"`

	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	Bytes        int64     `json:"bytes" yaml:"bytes"`
	ContentType  string    `json:"content_type" yaml:"content_type"`

	// ETag is the integrity tag reported by the backend. For single-part
	// uploads on Swift and S3 it equals the MD5 of the content.
	ETag string `json:"etag,omitempty" yaml:"etag,omitempty"`

	// Directory is set when the backend reports the object as a directory.
	Directory bool `json:"directory,omitempty" yaml:"directory,omitempty"`

	// Synthetic marks listing entries that have no backing object.
	Synthetic bool `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Content is only populated by full fetches.
	Content []byte `json:"content,omitempty" yaml:"-"`
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	if o.Headers != nil {
		c.Headers = make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			c.Headers[k] = v
		}
	}
	if o.Content != nil {
		c.Content = append([]byte(nil), o.Content...)
	}
	return &c
}

// IsDirectory reports whether o represents a folder. Any one of a trailing
// separator, a backend directory flag or the directory content type is
// sufficient.
func IsDirectory(o *Object) bool {
	if o == nil {
		return false
	}
	return strings.HasSuffix(o.Name, "/") ||
		o.Directory ||
		o.ContentType == DirectoryContentType
}
