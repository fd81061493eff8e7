package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/softgate/indexfs"
)

func (c *cli) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <archive>",
		Short: "List the indexes and files in an archive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fsys, err := indexfs.Decode(args[0], c.opts...)
			if err != nil {
				return err
			}
			defer fsys.Close()
			return printTree(c.stdout, fsys)
		},
	}
}

func (c *cli) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive> <index-id> <file>",
		Short: "Write a file's payload to stdout.",
		Long: "Write a file's payload to stdout. <file> is matched by name, ignoring case;\n" +
			"if no name matches and <file> is a number, it is used as the file's slot.",
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			fsys, err := indexfs.Decode(args[0], c.opts...)
			if err != nil {
				return err
			}
			defer fsys.Close()

			data, err := readFile(fsys, id, args[2])
			if err != nil {
				return err
			}
			_, err = c.stdout.Write(data)
			return err
		},
	}
}

func (c *cli) putCmd() *cobra.Command {
	var create bool
	var name string
	cmd := &cobra.Command{
		Use:   "put <archive> <index-id> <path>...",
		Short: "Add files from disk to an index, replacing files with the same name.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			archive := args[0]
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			fsys, err := c.open(archive, create)
			if err != nil {
				return err
			}
			defer fsys.Close()

			if id >= fsys.Len() {
				indexName := name
				if indexName == "" {
					indexName = "index" + strconv.Itoa(id)
				}
				if _, err := fsys.Add(indexfs.NewNamedIndex(id, indexName)); err != nil {
					return err
				}
			}
			idx := fsys.Index(id)

			for _, path := range args[2:] {
				replaced, err := idx.ReplaceByNameFromFile(filepath.Base(path), path)
				if err != nil {
					return err
				}
				if replaced {
					c.logger.Info("replaced file", "index", id, "path", path)
					continue
				}
				if err := idx.AddFile(path); err != nil {
					return err
				}
				c.logger.Info("added file", "index", id, "path", path)
			}
			return fsys.Encode(archive)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create the archive if it does not exist")
	cmd.Flags().StringVar(&name, "index-name", "", "name for the index if it has to be created")
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	var wholeIndex bool
	cmd := &cobra.Command{
		Use:   "rm <archive> <index-id> [file]",
		Short: "Remove a file from an index, or a whole index with --index.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			archive := args[0]
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if wholeIndex != (len(args) == 2) {
				return errors.New("give either a file or --index, not both")
			}

			fsys, err := indexfs.Decode(archive, c.opts...)
			if err != nil {
				return err
			}
			defer fsys.Close()

			if wholeIndex {
				if err := fsys.Remove(id); err != nil {
					return err
				}
				return fsys.Encode(archive)
			}

			if id < 0 || id >= fsys.Len() {
				return &indexfs.ValidationError{Op: "rm", ID: id, Len: fsys.Len()}
			}
			if err := removeFile(fsys.Index(id), args[2]); err != nil {
				return err
			}
			return fsys.Encode(archive)
		},
	}
	cmd.Flags().BoolVar(&wholeIndex, "index", false, "remove the whole index instead of a file")
	return cmd
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>...",
		Short: "Report digest, sizes, and counts for one or more archives.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]*indexfs.InspectResult, len(args))

			// Each archive is decoded into its own FileSystem.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(4)
			for i, path := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					r, err := indexfs.Inspect(path, c.opts...)
					if err != nil {
						return err
					}
					results[i] = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for _, r := range results {
				printInspect(c.stdout, r)
			}
			return nil
		},
	}
}

// open decodes the archive at path, or returns an empty FileSystem when it
// does not exist and create is set.
func (c *cli) open(path string, create bool) (*indexfs.FileSystem, error) {
	fsys, err := indexfs.Decode(path, c.opts...)
	if err == nil {
		return fsys, nil
	}
	if create && errors.Is(err, fs.ErrNotExist) {
		c.logger.Info("creating archive", "path", path)
		return indexfs.New(c.opts...), nil
	}
	return nil, err
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index id %q: %w", s, err)
	}
	if id < 0 {
		return 0, &indexfs.ValidationError{Op: "parse", ID: id}
	}
	return id, nil
}

// readFile looks ref up by name first and falls back to a numeric slot.
func readFile(fsys *indexfs.FileSystem, id int, ref string) ([]byte, error) {
	data, ok, err := fsys.ReadByName(id, ref)
	if err != nil {
		return nil, err
	}
	if ok {
		return data, nil
	}
	if fileID, convErr := strconv.Atoi(ref); convErr == nil {
		return fsys.Read(id, fileID)
	}
	return nil, fmt.Errorf("index %d: %w: %s", id, fs.ErrNotExist, ref)
}

func removeFile(idx *indexfs.Index, ref string) error {
	if _, ok := idx.FileByName(ref); ok {
		return idx.RemoveByName(ref)
	}
	if fileID, err := strconv.Atoi(ref); err == nil {
		if _, ok := idx.File(fileID); ok {
			return idx.Remove(fileID)
		}
	}
	return fmt.Errorf("index %d: %w: %s", idx.ID(), fs.ErrNotExist, ref)
}

func printTree(w io.Writer, fsys *indexfs.FileSystem) error {
	if _, err := fmt.Fprintf(w, "There are %d indexes in this file system\n\n", fsys.Len()); err != nil {
		return err
	}
	for _, idx := range fsys.All() {
		if _, err := fmt.Fprintf(w, "index=[%d, %s]\n", idx.ID(), idx.Name()); err != nil {
			return err
		}
		for _, f := range idx.All() {
			size := humanize.IBytes(uint64(len(f.Payload)))
			if _, err := fmt.Fprintf(w, "\tfile=[%d, %s] %s\n", f.Header.ID, f.Header.Name, size); err != nil {
				return err
			}
		}
	}
	return nil
}

func printInspect(w io.Writer, r *indexfs.InspectResult) {
	fmt.Fprintf(w, "%s\n", r.Path())
	fmt.Fprintf(w, "  digest:       %s\n", r.Digest())
	fmt.Fprintf(w, "  indexes:      %d\n", r.IndexCount())
	fmt.Fprintf(w, "  files:        %s\n", humanize.Comma(int64(r.FileCount())))
	fmt.Fprintf(w, "  payload:      %s\n", humanize.IBytes(r.PayloadSize()))
	fmt.Fprintf(w, "  uncompressed: %s\n", humanize.IBytes(r.UncompressedSize()))
	fmt.Fprintf(w, "  compressed:   %s (ratio %.3f)\n", humanize.IBytes(r.CompressedSize()), r.CompressionRatio())
}
