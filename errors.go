package dotthz

import (
	"errors"
	"fmt"
	"os"

	"github.com/dotthztag/go-dotthz/internal/hdf5"
)

// Error kinds returned by this package. Match with errors.Is; errors
// carry additional context from the engine and the filesystem.
var (
	// ErrNotFound indicates a missing file, group, dataset or attribute.
	ErrNotFound = errors.New("not found")

	// ErrExists indicates a creation collision on a file, group or dataset.
	ErrExists = errors.New("already exists")

	// ErrFormat indicates the file is not a recognized HDF5 container or a
	// structural element is malformed.
	ErrFormat = errors.New("format error")

	// ErrTypeMismatch indicates the stored element type cannot be read
	// losslessly as the requested type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrReadOnly indicates a mutating operation on a read-only handle.
	ErrReadOnly = errors.New("file is read-only")
)

// translate maps engine and filesystem errors onto this package's error
// kinds. Errors with no mapping pass through unchanged (the IoError kind).
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hdf5.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, hdf5.ErrNotGroup), errors.Is(err, hdf5.ErrNotDataset):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, hdf5.ErrExists):
		return fmt.Errorf("%w: %v", ErrExists, err)
	case errors.Is(err, hdf5.ErrNotHDF5):
		return fmt.Errorf("%w: %v", ErrFormat, err)
	case errors.Is(err, hdf5.ErrReadOnly):
		return fmt.Errorf("%w: %v", ErrReadOnly, err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, os.ErrExist):
		return fmt.Errorf("%w: %v", ErrExists, err)
	default:
		return err
	}
}
