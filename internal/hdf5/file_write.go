package hdf5

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/dotthztag/go-dotthz/internal/alloc"
	binpkg "github.com/dotthztag/go-dotthz/internal/binary"
	"github.com/dotthztag/go-dotthz/internal/object"
	"github.com/dotthztag/go-dotthz/internal/superblock"
)

// Create creates a new HDF5 file at the given path, truncating any
// existing file. The file is created with a V2 superblock and V2 object
// headers. The returned file is readable as well as writable, so objects
// written in this session can be read back without reopening.
func Create(path string, opts ...FileOption) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}

	flags := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if options.exclusive {
		flags = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	osFile, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		if options.exclusive && errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, err
	}

	cfg := binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: options.offsetSize,
		LengthSize: options.lengthSize,
	}
	writer := binpkg.NewWriter(osFile, cfg)
	reader := binpkg.NewReader(osFile, cfg)

	sb := superblock.NewSuperblock()
	sb.OffsetSize = uint8(options.offsetSize)
	sb.LengthSize = uint8(options.lengthSize)

	sbSize := sb.Size()

	// Root group object header goes right after the superblock.
	rootGroupAddr := uint64(sbSize)
	sb.RootGroupAddress = rootGroupAddr

	rootMessages := object.NewEmptyGroupHeader()

	// Use the minimum chunk size for compatibility with h5py.
	headerSize := object.HeaderSizeWithMinChunk(writer, rootMessages, object.MinGroupChunkSize)
	eofAddr := uint64(sbSize + headerSize)
	sb.EOFAddress = eofAddr

	if _, err := sb.Write(writer); err != nil {
		osFile.Close()
		os.Remove(path)
		return nil, err
	}

	if _, err := object.WriteHeaderWithMinChunk(writer, rootMessages, object.MinGroupChunkSize); err != nil {
		osFile.Close()
		os.Remove(path)
		return nil, err
	}

	allocator := alloc.New(eofAddr)

	f := &File{
		path:       path,
		file:       osFile,
		reader:     reader,
		superblock: sb,
		writable:   true,
		writer:     writer,
		allocator:  allocator,
	}

	f.root = &Group{
		file: f,
		path: "/",
		addr: rootGroupAddr,
	}

	return f, nil
}

// Flush writes any pending changes to disk.
func (f *File) Flush() error {
	if !f.writable {
		return nil
	}

	// Update superblock with current EOF from allocator
	f.superblock.EOFAddress = f.allocator.EOFAddr()

	w := f.writer.At(0)
	if _, err := f.superblock.Write(w); err != nil {
		return err
	}

	return f.file.Sync()
}

// allocate reserves space in the file and returns the address.
func (f *File) allocate(size int64) uint64 {
	return f.allocator.Alloc(uint64(size))
}

// closeWritable handles closing a writable file.
func (f *File) closeWritable() error {
	return f.Flush()
}

// OpenReadWrite opens an existing HDF5 file for reading and writing.
// This allows adding groups, datasets, and attributes to existing files.
func OpenReadWrite(path string) (*File, error) {
	osFile, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	sb, err := superblock.Read(osFile)
	if err != nil {
		osFile.Close()
		if errors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%w: %s", ErrNotHDF5, path)
		}
		return nil, err
	}

	// Reader and writer share the superblock's byte order, offset size and
	// length size so addresses written in this session stay consistent.
	readerCfg := sb.ReaderConfig()
	reader := binpkg.NewReader(osFile, readerCfg)
	writer := binpkg.NewWriter(osFile, readerCfg)

	allocator := alloc.New(sb.EOFAddress)

	f := &File{
		path:       path,
		file:       osFile,
		reader:     reader,
		superblock: sb,
		writable:   true,
		writer:     writer,
		allocator:  allocator,
	}

	root, err := f.openGroupAt(sb.RootGroupAddress, "/")
	if err != nil {
		osFile.Close()
		return nil, err
	}
	f.root = root

	return f, nil
}

// IsWritable returns true if the file was opened for writing.
func (f *File) IsWritable() bool {
	return f.writable
}
