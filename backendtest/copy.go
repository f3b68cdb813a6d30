package backendtest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/jmgilman/objfs/core"
)

func testCopy(t *testing.T, b core.Backend, _ Config, _ func(string) bool) {
	ctx := context.Background()
	put(t, b, "src.txt", "copy me", "text/plain")

	t.Run("ServerSide", func(t *testing.T) {
		if err := b.CopyObject(ctx, "src.txt", "dir/dst.txt"); err != nil {
			t.Fatalf("CopyObject(): %v", err)
		}

		_, rc, err := b.GetObject(ctx, "dir/dst.txt")
		if err != nil {
			t.Fatalf("GetObject(dst): %v", err)
		}
		defer func() { _ = rc.Close() }()
		data, _ := io.ReadAll(rc)
		if string(data) != "copy me" {
			t.Errorf("copied content = %q, want %q", data, "copy me")
		}

		if _, err := b.HeadObject(ctx, "src.txt"); err != nil {
			t.Errorf("source missing after copy: %v", err)
		}
	})

	t.Run("MissingSource", func(t *testing.T) {
		err := b.CopyObject(ctx, "nope.txt", "dst2.txt")
		if !errors.Is(err, core.ErrNotExist) {
			t.Errorf("CopyObject(missing) error = %v, want ErrNotExist", err)
		}
	})
}

func testBulkDelete(t *testing.T, b core.Backend, _ Config, _ func(string) bool) {
	ctx := context.Background()
	put(t, b, "x/", "", core.DirectoryContentType)
	put(t, b, "x/1", "1", "")
	put(t, b, "x/2", "2", "")
	put(t, b, "keep", "k", "")

	result, err := b.BulkDelete(ctx, []string{"x/", "x/1", "x/2", "x/missing"})
	if err != nil {
		t.Fatalf("BulkDelete(): %v", err)
	}
	if !result.OK() {
		t.Errorf("BulkDelete() failed keys: %v", result.FailedKeys())
	}
	// S3 does not report missing keys, so they may count as deleted.
	if result.Deleted < 3 || result.Deleted+result.NotFound != 4 {
		t.Errorf("BulkDelete() deleted=%d notfound=%d, want 3+1", result.Deleted, result.NotFound)
	}

	objs, err := b.ListObjects(ctx, core.ListOptions{Recursive: true})
	if err != nil {
		t.Fatalf("ListObjects(): %v", err)
	}
	if got := names(objs); !equal(got, []string{"keep"}) {
		t.Errorf("objects after bulk delete = %v, want [keep]", got)
	}

	empty, err := b.BulkDelete(ctx, nil)
	if err != nil {
		t.Fatalf("BulkDelete(nil): %v", err)
	}
	if !empty.OK() {
		t.Error("BulkDelete(nil) reported failures")
	}
}
