// Package walk provides helper functions for folder tree walking over a
// listing function.
package walk

import (
	"context"
	"errors"
	"io/fs"

	"github.com/jmgilman/objfs/internal/types"
)

// ListFunc returns the direct children of a folder identifier, folders and
// files alike.
type ListFunc func(ctx context.Context, folder string) ([]types.Item, error)

// VisitFunc is called for every entry below the walked folder. Returning
// fs.SkipDir from a folder skips its contents.
type VisitFunc func(identifier string, entry fs.DirEntry, err error) error

// Tree walks the folder tree rooted at root depth first, visiting each
// folder before its contents.
func Tree(ctx context.Context, root string, list ListFunc, fn VisitFunc) error {
	err := walkFolder(ctx, root, list, fn)
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walkFolder(ctx context.Context, folder string, list ListFunc, fn VisitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	items, err := list(ctx, folder)
	if err != nil {
		return fn(folder, nil, err)
	}

	for _, item := range items {
		if err := ProcessEntry(ctx, item, list, fn); err != nil {
			return err
		}
	}
	return nil
}

// ProcessEntry processes a single entry during walking.
// It determines whether the entry is a file or folder and calls the
// appropriate handler.
func ProcessEntry(ctx context.Context, item types.Item, list ListFunc, fn VisitFunc) error {
	if item.Folder {
		return ProcessFolder(ctx, item, list, fn)
	}
	return ProcessFile(item, fn)
}

// ProcessFolder visits a folder entry and then walks into it.
func ProcessFolder(ctx context.Context, item types.Item, list ListFunc, fn VisitFunc) error {
	err := fn(item.Identifier, types.NewDirEntry(item), nil)
	if errors.Is(err, fs.SkipDir) {
		return nil // Skip this folder, continue with siblings
	}
	if err != nil {
		return err
	}
	return walkFolder(ctx, item.Identifier, list, fn)
}

// ProcessFile handles calling fn for a file entry.
func ProcessFile(item types.Item, fn VisitFunc) error {
	err := fn(item.Identifier, types.NewDirEntry(item), nil)
	if errors.Is(err, fs.SkipDir) {
		return nil // SkipDir on a file is ignored
	}
	return err
}
