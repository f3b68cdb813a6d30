package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmgilman/objfs"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/pathutil"
)

func (a *app) lsCmd() *cobra.Command {
	var recursive, folders, ids bool
	cmd := &cobra.Command{
		Use:   "ls [folder]",
		Short: "List the files or folders of a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := objfs.RootFolder
			if len(args) == 1 {
				folder = args[0]
			}
			opts := objfs.ListOptions{Recursive: recursive}

			var (
				items []objfs.Item
				err   error
			)
			switch {
			case folders:
				items, err = a.drv.ListFolders(cmd.Context(), folder, opts)
			case ids:
				items, err = a.drv.ListFileIdentifiers(cmd.Context(), folder, opts)
			default:
				items, err = a.drv.ListFiles(cmd.Context(), folder, opts)
			}
			if err != nil {
				return err
			}
			return a.printItems(items)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "R", false, "include nested entries")
	cmd.Flags().BoolVar(&folders, "folders", false, "list folders instead of files")
	cmd.Flags().BoolVar(&ids, "ids", false, "list identifiers only")
	return cmd
}

func (a *app) statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <file>",
		Short: "Show file information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.drv.FileInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printInfo(info)
		},
	}
}

func (a *app) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "Print the content of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.drv.ReadContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = a.out.Write(content)
			return err
		},
	}
}

func (a *app) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-file> <folder> [name]",
		Short: "Upload a local file into a folder",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 3 {
				name = args[2]
			}
			info, err := a.drv.AddFile(cmd.Context(), args[0], args[1], name)
			if err != nil {
				return err
			}
			return a.printInfo(info)
		},
	}
}

func (a *app) touchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch <name> [folder]",
		Short: "Create an empty file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := objfs.RootFolder
			if len(args) == 2 {
				folder = args[1]
			}
			info, err := a.drv.CreateFile(cmd.Context(), args[0], folder)
			if err != nil {
				return err
			}
			return a.printInfo(info)
		},
	}
}

func (a *app) writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <file> [local-file]",
		Short: "Replace the content of an existing file from a local file or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return a.drv.ReplaceFile(cmd.Context(), args[0], args[1])
			}
			content, err := io.ReadAll(a.in)
			if err != nil {
				return errors.Wrap(err, errors.CodeInvalidInput, "failed to read stdin")
			}
			n, err := a.drv.SetContents(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}
			return a.printValue("bytes", n)
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "rm <file|folder/>",
		Short: "Delete a file or a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				deleted bool
				err     error
			)
			if pathutil.IsFolder(args[0]) {
				deleted, err = a.drv.DeleteFolder(cmd.Context(), args[0], recursive)
			} else {
				deleted, err = a.drv.Delete(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return a.printValue("deleted", deleted)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete folder contents")
	return cmd
}

func (a *app) mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <name> [parent]",
		Short: "Create a folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := objfs.RootFolder
			if len(args) == 2 {
				parent = args[1]
			}
			id, err := a.drv.CreateFolder(cmd.Context(), args[0], parent)
			if err != nil {
				return err
			}
			return a.printValue("identifier", id)
		},
	}
}

func (a *app) mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <file|folder/> <target-folder> [name]",
		Short: "Move a file or a folder",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transfer(cmd, args, objfs.TreeMove)
		},
	}
}

func (a *app) cpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <file|folder/> <target-folder> [name]",
		Short: "Copy a file or a folder",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transfer(cmd, args, objfs.TreeCopy)
		},
	}
}

// transfer moves or copies args[0] into folder args[1].
func (a *app) transfer(cmd *cobra.Command, args []string, op objfs.TreeOp) error {
	ctx := cmd.Context()
	src, target := args[0], args[1]
	name := ""
	if len(args) == 3 {
		name = args[2]
	}

	if pathutil.IsFolder(src) {
		if name == "" {
			name = pathutil.Basename(src)
		}
		var (
			m   objfs.IdentityMap
			err error
		)
		if op == objfs.TreeMove {
			m, err = a.drv.MoveFolder(ctx, src, target, name)
		} else {
			m, err = a.drv.CopyFolder(ctx, src, target, name)
		}
		if err != nil {
			return err
		}
		return a.printMap(m)
	}

	if op == objfs.TreeMove {
		id, err := a.drv.MoveFile(ctx, src, target, name)
		if err != nil {
			return err
		}
		return a.printValue("identifier", id)
	}
	info, err := a.drv.CopyFile(ctx, src, target, name)
	if err != nil {
		return err
	}
	return a.printInfo(info)
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file|folder/> <new-name>",
		Short: "Rename a file or a folder in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pathutil.IsFolder(args[0]) {
				m, err := a.drv.RenameFolder(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return a.printMap(m)
			}
			id, err := a.drv.RenameFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printValue("identifier", id)
		},
	}
}

func (a *app) hashCmd() *cobra.Command {
	var algo string
	cmd := &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the digest of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.drv.Hash(cmd.Context(), args[0], algo)
			if err != nil {
				return err
			}
			return a.printValue(strings.ToLower(algo), sum)
		},
	}
	cmd.Flags().StringVar(&algo, "algo", objfs.HashMD5,
		"hash algorithm: "+strings.Join(objfs.SupportedHashAlgorithms(), ", "))
	return cmd
}

func (a *app) urlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <file>",
		Short: "Print a public or temporary URL for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.drv.PublicURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printValue("url", u)
		},
	}
}

func (a *app) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <file>",
		Short: "Download a file to a local temporary copy and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.drv.CopyToLocal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printValue("path", path)
		},
	}
}

func (a *app) existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <file|folder/>",
		Short: "Report whether a file or folder exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.drv.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printValue("exists", ok)
		},
	}
}

func (a *app) permsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perms <identifier>",
		Short: "Show the permissions of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.drv.Permissions(cmd.Context(), args[0])
			return a.print(p, func(w io.Writer) error {
				mode := []byte("--")
				if p.Read {
					mode[0] = 'r'
				}
				if p.Write {
					mode[1] = 'w'
				}
				_, err := w.Write(append(mode, '\n'))
				return err
			})
		},
	}
}

func (a *app) flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Drop every cached metadata record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.drv.FlushCache(cmd.Context())
		},
	}
}
