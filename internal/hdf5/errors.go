// Package hdf5 implements the subset of HDF5 needed by dotThz containers:
// file creation and opening, groups with attributes, and dense numeric
// datasets. It is a pure Go implementation with no cgo dependency.
package hdf5

import "errors"

// Common errors
var (
	ErrNotHDF5     = errors.New("not an HDF5 file")
	ErrNotFound    = errors.New("object not found")
	ErrExists      = errors.New("object already exists")
	ErrNotDataset  = errors.New("object is not a dataset")
	ErrNotGroup    = errors.New("object is not a group")
	ErrUnsupported = errors.New("unsupported feature")
	ErrClosed      = errors.New("file is closed")
	ErrReadOnly    = errors.New("file is not writable")
	ErrLinkDepth   = errors.New("maximum link depth exceeded")
)

// MaxLinkDepth is the maximum number of soft links that can be followed
// in a single path resolution. This prevents stack overflow from deeply
// nested links.
const MaxLinkDepth = 100
