package dotthz

import (
	"fmt"
	"os"

	"github.com/dotthztag/go-dotthz/internal/hdf5"
)

// Mode selects the access mode for OpenAs.
type Mode int

const (
	// ReadOnly opens a file for reading; mutating operations fail with
	// ErrReadOnly.
	ReadOnly Mode = iota

	// ReadWrite opens a file for reading and writing.
	ReadWrite
)

// File is a handle to an open dotThz container. It owns the backing file
// resource for its lifetime; Group and Dataset handles obtained from it
// must not be used after Close.
//
// A File is not safe for concurrent use. Callers needing multi-writer
// access to one path must serialize externally.
type File struct {
	engine   *hdf5.File
	path     string
	readOnly bool
}

// Create creates a new dotThz file at path, truncating any existing file.
func Create(path string) (*File, error) {
	f, err := hdf5.Create(path)
	if err != nil {
		return nil, translate(err)
	}
	return &File{engine: f, path: path}, nil
}

// CreateExcl creates a new dotThz file at path, failing with ErrExists
// when a file is already present.
func CreateExcl(path string) (*File, error) {
	f, err := hdf5.Create(path, hdf5.WithExclusive())
	if err != nil {
		return nil, translate(err)
	}
	return &File{engine: f, path: path}, nil
}

// Open opens an existing dotThz file read-only. Fails with ErrNotFound
// when the path does not exist and ErrFormat when the file is not HDF5.
func Open(path string) (*File, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, translate(err)
	}
	return &File{engine: f, path: path, readOnly: true}, nil
}

// OpenRW opens an existing dotThz file for reading and writing.
func OpenRW(path string) (*File, error) {
	f, err := hdf5.OpenReadWrite(path)
	if err != nil {
		return nil, translate(err)
	}
	return &File{engine: f, path: path}, nil
}

// OpenAs opens a file with an explicit access mode.
func OpenAs(path string, mode Mode) (*File, error) {
	if mode == ReadOnly {
		return Open(path)
	}
	return OpenRW(path)
}

// Append opens path for reading and writing, creating the file first when
// it does not exist.
func Append(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Create(path)
	}
	return OpenRW(path)
}

// Close releases the backing file resource, flushing pending writes first.
func (f *File) Close() error {
	return f.engine.Close()
}

// Flush commits the superblock and syncs the file to disk.
func (f *File) Flush() error {
	if f.readOnly {
		return nil
	}
	return f.engine.Flush()
}

// Path returns the filesystem path this handle was opened with.
func (f *File) Path() string {
	return f.path
}

// IsReadOnly reports whether the handle was opened read-only.
func (f *File) IsReadOnly() bool {
	return f.readOnly
}

// Size returns the current file size in bytes.
func (f *File) Size() uint64 {
	return f.engine.Size()
}

// AddGroup creates a new measurement group and writes the full metadata
// attribute schema on it. Fails with ErrExists when the name is taken.
func (f *File) AddGroup(name string, md *Metadata) (*Group, error) {
	if f.readOnly {
		return nil, ErrReadOnly
	}

	g, err := f.engine.Root().CreateGroup(name)
	if err != nil {
		return nil, translate(err)
	}

	if md != nil {
		if err := md.writeTo(g); err != nil {
			return nil, translate(err)
		}
	}

	return &Group{file: f, name: name}, nil
}

// GroupNames returns the names of all measurement groups in the engine's
// enumeration order.
func (f *File) GroupNames() ([]string, error) {
	members, err := f.engine.Root().Members()
	if err != nil {
		return nil, translate(err)
	}

	var names []string
	for _, name := range members {
		if _, err := f.engine.Root().OpenGroup(name); err == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

// Groups returns a Group view for every measurement group, in the same
// order as GroupNames.
func (f *File) Groups() ([]*Group, error) {
	names, err := f.GroupNames()
	if err != nil {
		return nil, err
	}

	groups := make([]*Group, len(names))
	for i, name := range names {
		groups[i] = &Group{file: f, name: name}
	}
	return groups, nil
}

// Group returns a view of one measurement group. Fails with ErrNotFound
// when the group does not exist.
func (f *File) Group(name string) (*Group, error) {
	if _, err := f.openGroup(name); err != nil {
		return nil, err
	}
	return &Group{file: f, name: name}, nil
}

// GetMetaData reads back a group's attributes into a fresh Metadata.
// Missing individual attributes populate the corresponding field with its
// zero value rather than failing the read.
func (f *File) GetMetaData(groupName string) (*Metadata, error) {
	g, err := f.openGroup(groupName)
	if err != nil {
		return nil, err
	}
	return readMetadata(g), nil
}

// SetMetaData updates a group's attributes from md, overwriting attributes
// that exist and creating the rest. A failure partway through may leave
// some attributes updated and others not; the error is surfaced either way.
func (f *File) SetMetaData(groupName string, md *Metadata) error {
	if f.readOnly {
		return ErrReadOnly
	}

	g, err := f.openGroup(groupName)
	if err != nil {
		return err
	}
	return translate(md.writeTo(g))
}

// DeleteMetaDataAttribute removes one named attribute from a group. The
// key may be a raw attribute name or a key of the free-form md mapping; in
// the latter case the remaining md entries are renumbered so the mapping
// stays consistent. Fails with ErrNotFound when neither exists.
//
// Passing a raw "mdN" attribute name deletes that attribute without
// touching mdDescription, leaving the corresponding md key mapped to an
// empty value on the next read. Delete md entries by their key instead.
func (f *File) DeleteMetaDataAttribute(groupName, key string) error {
	if f.readOnly {
		return ErrReadOnly
	}

	g, err := f.openGroup(groupName)
	if err != nil {
		return err
	}

	if g.HasAttr(key) {
		return translate(g.DeleteAttr(key))
	}

	// Resolve key against the md mapping.
	md := readMetadata(g)
	if md.MD == nil {
		return fmt.Errorf("%w: attribute %q", ErrNotFound, key)
	}
	if _, ok := md.MD.Get(key); !ok {
		return fmt.Errorf("%w: attribute %q", ErrNotFound, key)
	}

	md.MD.Delete(key)
	return translate(md.writeTo(g))
}

// AddDataset creates a dataset under a group holding a copy of data,
// preserving shape and numeric precision. data may be a nested Go slice, a
// flat []float32/[]float64 combined with WithShape, or a
// *sparse.DenseArray. Fails with ErrExists on a name collision and
// ErrNotFound when the group is absent.
func (f *File) AddDataset(groupName, name string, data interface{}, opts ...DatasetOption) error {
	if f.readOnly {
		return ErrReadOnly
	}

	g, err := f.openGroup(groupName)
	if err != nil {
		return err
	}

	data, opts = normalizeDense(data, opts)

	var options datasetOptions
	for _, opt := range opts {
		opt(&options)
	}

	if _, err := g.CreateDataset(name, data, options.engine()...); err != nil {
		return translate(err)
	}
	return nil
}

// Dataset returns a handle to one dataset. Fails with ErrNotFound when
// the group or dataset is absent.
func (f *File) Dataset(groupName, name string) (*Dataset, error) {
	g, err := f.openGroup(groupName)
	if err != nil {
		return nil, err
	}

	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, translate(err)
	}
	return &Dataset{ds: ds, name: name}, nil
}

// DatasetNames returns the dataset names within a group, in the engine's
// enumeration order.
func (f *File) DatasetNames(groupName string) ([]string, error) {
	g, err := f.openGroup(groupName)
	if err != nil {
		return nil, err
	}

	members, err := g.Members()
	if err != nil {
		return nil, translate(err)
	}

	var names []string
	for _, name := range members {
		if _, err := g.OpenDataset(name); err == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

// Datasets returns handles to all datasets within a group.
func (f *File) Datasets(groupName string) ([]*Dataset, error) {
	names, err := f.DatasetNames(groupName)
	if err != nil {
		return nil, err
	}

	datasets := make([]*Dataset, len(names))
	for i, name := range names {
		ds, err := f.Dataset(groupName, name)
		if err != nil {
			return nil, err
		}
		datasets[i] = ds
	}
	return datasets, nil
}

// openGroup resolves a measurement group by name.
func (f *File) openGroup(name string) (*hdf5.Group, error) {
	g, err := f.engine.Root().OpenGroup(name)
	if err != nil {
		return nil, translate(fmt.Errorf("group %q: %w", name, err))
	}
	return g, nil
}
