package backendtest

import (
	"context"
	"testing"

	"github.com/jmgilman/objfs/core"
)

func names(objs []*core.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testListing(t *testing.T, b core.Backend, _ Config, shouldSkip func(string) bool) {
	ctx := context.Background()

	put(t, b, "a/", "", core.DirectoryContentType)
	put(t, b, "a/b", "b", "")
	put(t, b, "a/c/", "", core.DirectoryContentType)
	put(t, b, "a/c/d", "d", "")
	put(t, b, "a/implicit/e", "e", "")
	put(t, b, "z.txt", "z", "")

	t.Run("Recursive", func(t *testing.T) {
		if shouldSkip("Listing/Recursive") {
			t.Skip("Skipped by provider configuration")
		}
		objs, err := b.ListObjects(ctx, core.ListOptions{Prefix: "a/", Recursive: true})
		if err != nil {
			t.Fatalf("ListObjects(): %v", err)
		}
		want := []string{"a/", "a/b", "a/c/", "a/c/d", "a/implicit/e"}
		if got := names(objs); !equal(got, want) {
			t.Errorf("ListObjects(recursive) = %v, want %v", got, want)
		}
	})

	t.Run("RecursiveRoot", func(t *testing.T) {
		objs, err := b.ListObjects(ctx, core.ListOptions{Recursive: true})
		if err != nil {
			t.Fatalf("ListObjects(): %v", err)
		}
		if len(objs) != 6 {
			t.Errorf("ListObjects(root, recursive) returned %d objects, want 6: %v", len(objs), names(objs))
		}
	})

	t.Run("Direct", func(t *testing.T) {
		if shouldSkip("Listing/Direct") {
			t.Skip("Skipped by provider configuration")
		}
		objs, err := b.ListObjects(ctx, core.ListOptions{Prefix: "a/"})
		if err != nil {
			t.Fatalf("ListObjects(): %v", err)
		}

		byName := make(map[string]*core.Object)
		for _, o := range objs {
			if _, dup := byName[o.Name]; dup {
				t.Errorf("ListObjects(direct) returned %q twice", o.Name)
			}
			byName[o.Name] = o
		}

		if _, ok := byName["a/b"]; !ok {
			t.Error("ListObjects(direct) is missing file a/b")
		}
		for _, dir := range []string{"a/c/", "a/implicit/"} {
			o, ok := byName[dir]
			if !ok {
				t.Errorf("ListObjects(direct) is missing folder %s", dir)
				continue
			}
			if !core.IsDirectory(o) {
				t.Errorf("ListObjects(direct) entry %s is not a directory", dir)
			}
		}
		for _, nested := range []string{"a/c/d", "a/implicit/e", "z.txt"} {
			if _, ok := byName[nested]; ok {
				t.Errorf("ListObjects(direct) returned %s", nested)
			}
		}
	})

	t.Run("DirectRoot", func(t *testing.T) {
		objs, err := b.ListObjects(ctx, core.ListOptions{})
		if err != nil {
			t.Fatalf("ListObjects(): %v", err)
		}
		want := []string{"a/", "z.txt"}
		if got := names(objs); !equal(got, want) {
			t.Errorf("ListObjects(root) = %v, want %v", got, want)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		objs, err := b.ListObjects(ctx, core.ListOptions{Prefix: "nothing/", Recursive: true})
		if err != nil {
			t.Fatalf("ListObjects(): %v", err)
		}
		if len(objs) != 0 {
			t.Errorf("ListObjects(empty) = %v, want none", names(objs))
		}
	})
}
