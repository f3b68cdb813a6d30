package core

import (
	"context"
	"io/fs"
	"path"
	"strings"
)

// CopyFromFS uploads every file of a read-only filesystem (typically an
// embed.FS or fstest.MapFS) into a backend below prefix, creating folder
// markers for each directory on the way.
//
// The srcRoot parameter specifies the root directory in the source
// filesystem. Use "." to copy the entire source filesystem.
//
// Example:
//
//	//go:embed fixtures/*
//	var fixtures embed.FS
//
//	err := core.CopyFromFS(ctx, fixtures, "fixtures", backend, "")
func CopyFromFS(ctx context.Context, src fs.FS, srcRoot string, dst Backend, prefix string) error {
	return fs.WalkDir(src, srcRoot, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := filePath
		if srcRoot != "." && srcRoot != "" {
			rel = strings.TrimPrefix(strings.TrimPrefix(filePath, srcRoot), "/")
		}
		if rel == "." || rel == "" {
			return nil
		}
		key := path.Join(prefix, rel)

		if d.IsDir() {
			return dst.PutObject(ctx, key+"/", strings.NewReader(""), PutOptions{
				ContentType: DirectoryContentType,
			})
		}

		f, err := src.Open(filePath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		return dst.PutObject(ctx, key, f, PutOptions{})
	})
}
