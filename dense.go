package dotthz

import (
	"github.com/ctessum/sparse"
)

// normalizeDense unwraps a *sparse.DenseArray into its flat element slice
// plus a shape option. Other data passes through unchanged.
func normalizeDense(data interface{}, opts []DatasetOption) (interface{}, []DatasetOption) {
	da, ok := data.(*sparse.DenseArray)
	if !ok {
		return data, opts
	}
	return da.Elements, append(opts, WithShape(da.Shape...))
}

// AddDatasetDense creates a dataset from a DenseArray, preserving its
// shape. Equivalent to AddDataset with the array's elements and shape.
func (f *File) AddDatasetDense(groupName, name string, arr *sparse.DenseArray) error {
	return f.AddDataset(groupName, name, arr)
}

// Dense reads the dataset into a row-major DenseArray of float64 values
// with the dataset's shape. Scalar datasets come back as a one-element
// one-dimensional array.
func (d *Dataset) Dense() (*sparse.DenseArray, error) {
	vals, err := d.ReadFloat64()
	if err != nil {
		return nil, err
	}

	shape := d.Shape()
	if shape == nil {
		shape = []int{len(vals)}
	}

	arr := sparse.ZerosDense(shape...)
	copy(arr.Elements, vals)
	return arr, nil
}
