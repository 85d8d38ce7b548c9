package dotthz

import (
	"fmt"

	"github.com/dotthztag/go-dotthz/internal/hdf5"
	"github.com/dotthztag/go-dotthz/internal/message"
)

// DatasetOption configures dataset creation.
type DatasetOption func(*datasetOptions)

type datasetOptions struct {
	shape []int
}

// WithShape gives explicit dimensions to a dataset created from a flat
// []float32 or []float64. The product of the dimensions must equal the
// slice length.
func WithShape(dims ...int) DatasetOption {
	return func(o *datasetOptions) {
		o.shape = dims
	}
}

func (o *datasetOptions) engine() []hdf5.DatasetOption {
	if o.shape == nil {
		return nil
	}
	dims := make([]uint64, len(o.shape))
	for i, d := range o.shape {
		dims[i] = uint64(d)
	}
	return []hdf5.DatasetOption{hdf5.WithShape(dims...)}
}

// Dataset is a handle to one stored n-dimensional numeric array. Reads go
// through the still-open File; a Dataset must not outlive it.
type Dataset struct {
	ds   *hdf5.Dataset
	name string
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.name
}

// Shape returns the dataset dimensions. Scalar datasets return nil.
func (d *Dataset) Shape() []int {
	raw := d.ds.Shape()
	if raw == nil {
		return nil
	}
	shape := make([]int, len(raw))
	for i, v := range raw {
		shape[i] = int(v)
	}
	return shape
}

// NumElements returns the total element count.
func (d *Dataset) NumElements() int {
	return int(d.ds.NumElements())
}

// ReadFloat32 reads the dataset as row-major float32 values. Fails with
// ErrTypeMismatch when the stored element type has a wider precision.
func (d *Dataset) ReadFloat32() ([]float32, error) {
	if d.ds.DtypeClass() != message.ClassFloatPoint || d.ds.DtypeSize() != 4 {
		return nil, fmt.Errorf("%w: dataset %q is not single-precision float", ErrTypeMismatch, d.name)
	}
	vals, err := d.ds.ReadFloat32()
	if err != nil {
		return nil, translate(err)
	}
	return vals, nil
}

// ReadFloat64 reads the dataset as row-major float64 values. Both single
// and double precision stored data convert losslessly.
func (d *Dataset) ReadFloat64() ([]float64, error) {
	if d.ds.DtypeClass() != message.ClassFloatPoint {
		return nil, fmt.Errorf("%w: dataset %q is not floating point", ErrTypeMismatch, d.name)
	}
	vals, err := d.ds.ReadFloat64()
	if err != nil {
		return nil, translate(err)
	}
	return vals, nil
}
