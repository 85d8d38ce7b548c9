package hdf5

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dotthztag/go-dotthz/internal/alloc"
	"github.com/dotthztag/go-dotthz/internal/binary"
	"github.com/dotthztag/go-dotthz/internal/object"
	"github.com/dotthztag/go-dotthz/internal/superblock"
)

// File represents an open HDF5 file.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	superblock *superblock.Superblock
	root       *Group
	closed     bool

	// Write support fields
	writable  bool
	writer    *binary.Writer
	allocator *alloc.Allocator
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	sb, err := superblock.Read(f)
	if err != nil {
		f.Close()
		if errors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%w: %s", ErrNotHDF5, path)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	reader := binary.NewReader(f, sb.ReaderConfig())

	hdf := &File{
		path:       path,
		file:       f,
		reader:     reader,
		superblock: sb,
	}

	root, err := hdf.openGroupAt(sb.RootGroupAddress, "/")
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	hdf.root = root

	return hdf, nil
}

// Close closes the HDF5 file. For writable files pending changes are
// flushed first.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.writable {
		if err := f.closeWritable(); err != nil {
			f.file.Close()
			return err
		}
	}

	return f.file.Close()
}

// Root returns the root group of the file.
func (f *File) Root() *Group {
	return f.root
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.superblock.Version)
}

// Size returns the current end-of-file address, i.e. the file size in bytes.
func (f *File) Size() uint64 {
	if f.allocator != nil {
		return f.allocator.EOFAddr()
	}
	return f.superblock.EOFAddress
}

// OpenGroup opens a group by path.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

// openGroupAt opens a group at the given address.
func (f *File) openGroupAt(address uint64, path string) (*Group, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}

	return &Group{
		file:   f,
		path:   path,
		header: header,
		addr:   address,
	}, nil
}

// openDatasetAt opens a dataset at the given address.
func (f *File) openDatasetAt(address uint64, path string) (*Dataset, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}

	return newDataset(f, path, header)
}

// normalizePath normalizes a path, handling leading/trailing slashes.
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	return path
}

// splitPath splits a path into its components.
func splitPath(path string) []string {
	path = normalizePath(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// findByAbsolutePath navigates an absolute path and returns the target's
// address. This is used for resolving soft links. The visited map tracks
// paths to detect cycles.
func (f *File) findByAbsolutePath(absPath string, visited map[string]bool) (uint64, bool, error) {
	parts := splitPath(absPath)
	if len(parts) == 0 {
		return f.superblock.RootGroupAddress, false, nil
	}

	current := f.root

	for i, name := range parts {
		res, err := current.findChildFull(name, visited)
		if err != nil {
			return 0, false, fmt.Errorf("resolving %q in path %s: %w", name, absPath, err)
		}

		if i == len(parts)-1 {
			return res.address, res.isDataset, nil
		}

		if res.isDataset {
			return 0, false, fmt.Errorf("%q is not a group in path %s", name, absPath)
		}

		nextGroup, err := f.openGroupAt(res.address, "")
		if err != nil {
			return 0, false, fmt.Errorf("opening group %q: %w", name, err)
		}
		current = nextGroup
	}

	return 0, false, fmt.Errorf("empty path")
}
