package hdf5

import (
	"fmt"
	"path"
	"reflect"

	"github.com/dotthztag/go-dotthz/internal/dtype"
	"github.com/dotthztag/go-dotthz/internal/layout"
	"github.com/dotthztag/go-dotthz/internal/message"
	"github.com/dotthztag/go-dotthz/internal/object"
)

// CreateDataset creates a new dataset with the given name holding a copy of
// data. The datatype is inferred from the Go element type. Dimensions are
// inferred from nested slices, or taken from WithShape for flat slices.
func (g *Group) CreateDataset(name string, data interface{}, opts ...DatasetOption) (*Dataset, error) {
	if !g.file.writable {
		return nil, ErrReadOnly
	}

	if name == "" {
		return nil, fmt.Errorf("dataset name cannot be empty")
	}

	if g.Exists(name) {
		return nil, fmt.Errorf("%w: dataset %q", ErrExists, name)
	}

	options := defaultDatasetOptions()
	for _, opt := range opts {
		opt(options)
	}

	dataVal := reflect.ValueOf(data)
	if dataVal.Kind() == reflect.Ptr {
		dataVal = dataVal.Elem()
	}

	var dims []uint64
	var elemType reflect.Type
	var err error

	if options.shape != nil {
		dims, elemType, err = shapedDimensionsAndType(dataVal, options.shape)
	} else {
		dims, elemType, err = inferDimensionsAndType(dataVal)
	}
	if err != nil {
		return nil, fmt.Errorf("inferring dimensions: %w", err)
	}

	datatype, err := dtype.GoTypeToDatatype(elemType)
	if err != nil {
		return nil, fmt.Errorf("creating datatype: %w", err)
	}

	dataspace := message.NewDataspace(dims, options.maxDims)

	flat, err := flattenData(dataVal, dims, elemType)
	if err != nil {
		return nil, fmt.Errorf("flattening data: %w", err)
	}

	rawData, err := dtype.Encode(datatype, flat)
	if err != nil {
		return nil, fmt.Errorf("encoding data: %w", err)
	}

	var dataLayout *message.DataLayout

	if options.chunks != nil {
		chunkDims := make([]uint32, len(options.chunks))
		for i, c := range options.chunks {
			chunkDims[i] = uint32(c)
		}

		cw := layout.NewChunkWriter(g.file.writer, chunkDims, datatype.Size, g.file.allocate)

		chunkSize := cw.ChunkSize()
		dataSize := uint64(len(rawData))

		if dataSize <= chunkSize {
			// Single chunk - use Implicit index type (compatible with h5py)
			chunkAddr, err := cw.WriteSingleChunk(rawData)
			if err != nil {
				return nil, fmt.Errorf("writing chunk: %w", err)
			}

			dataLayout = message.NewChunkedLayout(chunkDims, datatype.Size, message.ChunkIndexImplicit)
			dataLayout.ChunkIndexAddr = chunkAddr
		} else {
			// Multiple chunks - use Fixed Array (FAHD/FADB)
			chunks := layout.SplitIntoChunks(rawData, dims, chunkDims, datatype.Size)
			chunkAddrs, err := cw.WriteChunks(chunks)
			if err != nil {
				return nil, fmt.Errorf("writing chunks: %w", err)
			}

			indexAddr, err := cw.WriteFixedArrayIndex(chunkAddrs, nil)
			if err != nil {
				return nil, fmt.Errorf("writing chunk index: %w", err)
			}

			dataLayout = message.NewChunkedLayout(chunkDims, datatype.Size, message.ChunkIndexFixedArray)
			dataLayout.ChunkIndexAddr = indexAddr
		}
	} else {
		// Contiguous layout
		dataSize := uint64(len(rawData))
		dataAddr := g.file.allocate(int64(dataSize))

		w := g.file.writer.At(int64(dataAddr))
		if err := w.WriteBytes(rawData); err != nil {
			return nil, fmt.Errorf("writing data: %w", err)
		}

		dataLayout = message.NewContiguousLayout(dataAddr, dataSize)
	}

	messages := object.NewDatasetHeader(dataspace, datatype, dataLayout)

	for _, attr := range options.attributes {
		attrMsg, err := createAttributeMessage(attr.name, attr.value)
		if err != nil {
			return nil, fmt.Errorf("creating attribute %q: %w", attr.name, err)
		}
		messages = append(messages, attrMsg)
	}

	headerSize := object.HeaderSize(g.file.writer, messages)
	datasetAddr := g.file.allocate(int64(headerSize))

	hw := g.file.writer.At(int64(datasetAddr))
	if _, err := object.WriteHeader(hw, messages); err != nil {
		return nil, fmt.Errorf("writing dataset header: %w", err)
	}

	link := message.NewHardLink(name, datasetAddr)
	if err := g.addLink(link); err != nil {
		return nil, fmt.Errorf("adding link to parent: %w", err)
	}

	newPath := path.Join(g.path, name)
	if g.path == "/" {
		newPath = "/" + name
	}

	// Read the header back so the returned dataset is usable in this
	// session without reopening the file.
	return g.file.openDatasetAt(datasetAddr, newPath)
}

// shapedDimensionsAndType validates a flat slice against an explicit shape.
func shapedDimensionsAndType(val reflect.Value, shape []uint64) ([]uint64, reflect.Type, error) {
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return nil, nil, fmt.Errorf("explicit shape requires a flat slice, got %v", val.Kind())
	}

	elemType := val.Type().Elem()
	if elemType.Kind() == reflect.Slice || elemType.Kind() == reflect.Array {
		return nil, nil, fmt.Errorf("explicit shape requires a flat slice, got nested %v", val.Type())
	}

	numElements := uint64(1)
	for _, d := range shape {
		numElements *= d
	}
	if numElements != uint64(val.Len()) {
		return nil, nil, fmt.Errorf("shape %v requires %d elements, got %d", shape, numElements, val.Len())
	}

	dims := make([]uint64, len(shape))
	copy(dims, shape)
	return dims, elemType, nil
}

// flattenData turns nested slices into one flat row-major slice of the
// element type, checking that every level is rectangular. Flat slices and
// scalars pass through unchanged.
func flattenData(val reflect.Value, dims []uint64, elemType reflect.Type) (interface{}, error) {
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return val.Interface(), nil
	}
	inner := val.Type().Elem()
	if inner.Kind() != reflect.Slice && inner.Kind() != reflect.Array {
		return val.Interface(), nil
	}

	total := 1
	for _, d := range dims {
		total *= int(d)
	}

	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, total)
	out, err := appendFlat(out, val, dims, 0)
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func appendFlat(out, v reflect.Value, dims []uint64, depth int) (reflect.Value, error) {
	if depth == len(dims) {
		return reflect.Append(out, v), nil
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return out, fmt.Errorf("ragged data: expected slice at depth %d", depth)
	}
	if uint64(v.Len()) != dims[depth] {
		return out, fmt.Errorf("ragged data: length %d at depth %d, want %d", v.Len(), depth, dims[depth])
	}

	var err error
	for i := 0; i < v.Len(); i++ {
		out, err = appendFlat(out, v.Index(i), dims, depth+1)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// inferDimensionsAndType infers the dimensions and element type from a Go
// value, traversing nested slices.
func inferDimensionsAndType(val reflect.Value) ([]uint64, reflect.Type, error) {
	var dims []uint64
	current := val

	for {
		switch current.Kind() {
		case reflect.Slice, reflect.Array:
			dims = append(dims, uint64(current.Len()))
			if current.Len() == 0 {
				return dims, current.Type().Elem(), nil
			}
			current = current.Index(0)
		default:
			if len(dims) == 0 {
				// Scalar value
				dims = []uint64{1}
			}
			return dims, current.Type(), nil
		}
	}
}

// createAttributeMessage creates an attribute message from a name and value.
func createAttributeMessage(name string, value interface{}) (*message.Attribute, error) {
	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() == reflect.String {
		return createStringAttribute(name, val.String())
	}

	if val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.String {
		return createStringArrayAttribute(name, val)
	}

	var dims []uint64
	var elemType reflect.Type

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		dims = []uint64{uint64(val.Len())}
		if val.Len() > 0 {
			elemType = val.Index(0).Type()
		} else {
			elemType = val.Type().Elem()
		}
	default:
		// Scalar
		dims = nil
		elemType = val.Type()
	}

	datatype, err := dtype.GoTypeToDatatype(elemType)
	if err != nil {
		return nil, fmt.Errorf("unsupported attribute type %v: %w", elemType, err)
	}

	var dataspace *message.Dataspace
	if dims == nil {
		dataspace = message.NewScalarDataspace()
	} else {
		dataspace = message.NewDataspace(dims, nil)
	}

	data, err := dtype.Encode(datatype, value)
	if err != nil {
		return nil, fmt.Errorf("encoding attribute value: %w", err)
	}

	return message.NewAttribute(name, datatype, dataspace, data), nil
}

// createStringAttribute creates an attribute with a fixed-length string value.
func createStringAttribute(name string, s string) (*message.Attribute, error) {
	// Fixed-length string with null terminator
	strLen := len(s) + 1

	datatype := message.NewStringDatatype(uint32(strLen), message.PadNullTerm, message.CharsetUTF8)
	dataspace := message.NewScalarDataspace()

	data := make([]byte, strLen)
	copy(data, s)
	data[len(s)] = 0

	return message.NewAttribute(name, datatype, dataspace, data), nil
}

// createStringArrayAttribute creates an attribute with an array of
// fixed-length strings, padded to the longest entry.
func createStringArrayAttribute(name string, val reflect.Value) (*message.Attribute, error) {
	n := val.Len()
	if n == 0 {
		return nil, fmt.Errorf("empty string array not supported")
	}

	maxLen := 0
	for i := 0; i < n; i++ {
		s := val.Index(i).String()
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	strLen := maxLen + 1

	datatype := message.NewStringDatatype(uint32(strLen), message.PadNullTerm, message.CharsetUTF8)
	dataspace := message.NewDataspace([]uint64{uint64(n)}, nil)

	data := make([]byte, n*strLen)
	for i := 0; i < n; i++ {
		s := val.Index(i).String()
		offset := i * strLen
		copy(data[offset:], s)
		data[offset+len(s)] = 0
	}

	return message.NewAttribute(name, datatype, dataspace, data), nil
}
