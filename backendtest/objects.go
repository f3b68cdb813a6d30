package backendtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jmgilman/objfs/core"
)

func put(t *testing.T, b core.Backend, key, content, contentType string) {
	t.Helper()
	err := b.PutObject(context.Background(), key, strings.NewReader(content), core.PutOptions{ContentType: contentType})
	if err != nil {
		t.Fatalf("PutObject(%s): setup failed: %v", key, err)
	}
}

func testObjects(t *testing.T, b core.Backend, config Config, _ func(string) bool) {
	ctx := context.Background()
	content := "hello object store"

	put(t, b, "docs/readme.txt", content, "text/plain")
	put(t, b, "docs/", "", core.DirectoryContentType)

	t.Run("Head", func(t *testing.T) {
		obj, err := b.HeadObject(ctx, "docs/readme.txt")
		if err != nil {
			t.Fatalf("HeadObject(): %v", err)
		}
		if obj.Name != "docs/readme.txt" {
			t.Errorf("HeadObject().Name = %q, want %q", obj.Name, "docs/readme.txt")
		}
		if obj.Bytes != int64(len(content)) {
			t.Errorf("HeadObject().Bytes = %d, want %d", obj.Bytes, len(content))
		}
		if !strings.HasPrefix(obj.ContentType, "text/plain") {
			t.Errorf("HeadObject().ContentType = %q, want text/plain", obj.ContentType)
		}
		if obj.ETag == "" {
			t.Error("HeadObject().ETag is empty")
		}
		if len(obj.Content) != 0 {
			t.Error("HeadObject() returned content")
		}
		if core.IsDirectory(obj) {
			t.Error("HeadObject() reports a file as directory")
		}
	})

	t.Run("HeadMarker", func(t *testing.T) {
		obj, err := b.HeadObject(ctx, "docs/")
		if err != nil {
			t.Fatalf("HeadObject(docs/): %v", err)
		}
		if !core.IsDirectory(obj) {
			t.Error("HeadObject(docs/) is not a directory")
		}
	})

	t.Run("Get", func(t *testing.T) {
		obj, rc, err := b.GetObject(ctx, "docs/readme.txt")
		if err != nil {
			t.Fatalf("GetObject(): %v", err)
		}
		defer func() { _ = rc.Close() }()

		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll(): %v", err)
		}
		if string(data) != content {
			t.Errorf("GetObject() content = %q, want %q", data, content)
		}
		if obj.Name != "docs/readme.txt" {
			t.Errorf("GetObject().Name = %q", obj.Name)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		before, err := b.HeadObject(ctx, "docs/readme.txt")
		if err != nil {
			t.Fatalf("HeadObject(): %v", err)
		}
		if err := b.PutObject(ctx, "docs/readme.txt", bytes.NewReader([]byte("v2")), core.PutOptions{ContentType: "text/plain"}); err != nil {
			t.Fatalf("PutObject(): %v", err)
		}
		after, err := b.HeadObject(ctx, "docs/readme.txt")
		if err != nil {
			t.Fatalf("HeadObject(): %v", err)
		}
		if after.Bytes != 2 {
			t.Errorf("Bytes after overwrite = %d, want 2", after.Bytes)
		}
		if after.ETag == before.ETag {
			t.Error("ETag did not change after overwrite")
		}
	})

	t.Run("NotExist", func(t *testing.T) {
		if _, err := b.HeadObject(ctx, "missing.txt"); !errors.Is(err, core.ErrNotExist) {
			t.Errorf("HeadObject(missing) error = %v, want ErrNotExist", err)
		}
		if _, _, err := b.GetObject(ctx, "missing.txt"); !errors.Is(err, core.ErrNotExist) {
			t.Errorf("GetObject(missing) error = %v, want ErrNotExist", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		put(t, b, "tmp.txt", "x", "")
		if err := b.DeleteObject(ctx, "tmp.txt"); err != nil {
			t.Fatalf("DeleteObject(): %v", err)
		}
		if _, err := b.HeadObject(ctx, "tmp.txt"); !errors.Is(err, core.ErrNotExist) {
			t.Errorf("HeadObject() after delete error = %v, want ErrNotExist", err)
		}

		err := b.DeleteObject(ctx, "tmp.txt")
		if config.StrictDelete && !errors.Is(err, core.ErrNotExist) {
			t.Errorf("DeleteObject(missing) error = %v, want ErrNotExist", err)
		}
		if !config.StrictDelete && err != nil {
			t.Errorf("DeleteObject(missing) error = %v, want nil", err)
		}
	})
}
