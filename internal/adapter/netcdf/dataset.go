// Package netcdf reads GFS fields from NetCDF files. Classic (CDF-1/CDF-2)
// files are read with ctessum/cdf and NetCDF-4 files with go-native-netcdf;
// Open picks the reader from the file's magic bytes.
package netcdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
)

var (
	// ErrVariableNotFound is returned when a dataset has no variable of the
	// requested name.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrLevelNotFound is returned when a variable has no pressure level
	// matching the request.
	ErrLevelNotFound = errors.New("level not found")
)

// Dataset is an open NetCDF file.
type Dataset interface {
	// Variables lists the variable names in file order.
	Variables() []string
	// Dimensions returns the dimension names of a variable.
	Dimensions(name string) []string
	// Shape returns the dimension lengths of a variable.
	Shape(name string) []int
	// Read returns the hyperslab [begin, end) of a variable in row-major
	// order. Fill values are returned as NaN. Nil begin and end read the
	// whole variable.
	Read(name string, begin, end []int) ([]float64, error)
	Close() error
}

var (
	magicClassic = []byte("CDF")
	magicHDF5    = []byte("\x89HDF")
)

// Open opens a NetCDF file of either format.
func Open(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, fmt.Errorf("open dataset %s: read header: %w", path, err)
	}

	switch {
	case bytes.HasPrefix(head, magicClassic) && (head[3] == 1 || head[3] == 2):
		return openClassic(f)
	case bytes.Equal(head, magicHDF5):
		f.Close()
		return openHDF(path)
	default:
		f.Close()
		return nil, fmt.Errorf("open dataset %s: not a NetCDF file", path)
	}
}

// hyperslab copies [begin, end) out of a row-major array of the given shape.
func hyperslab(data []float64, shape, begin, end []int) []float64 {
	n := 1
	for d := range shape {
		n *= end[d] - begin[d]
	}
	out := make([]float64, 0, n)
	if n == 0 {
		return out
	}

	strides := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= shape[d]
	}

	last := len(shape) - 1
	idx := append([]int(nil), begin...)
	for {
		off := 0
		for d := range idx {
			off += idx[d] * strides[d]
		}
		out = append(out, data[off:off+end[last]-begin[last]]...)

		d := last - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < end[d] {
				break
			}
			idx[d] = begin[d]
		}
		if d < 0 {
			return out
		}
	}
}

// checkBounds validates and fills in a [begin, end) request.
func checkBounds(name string, shape, begin, end []int) ([]int, []int, error) {
	if begin == nil {
		begin = make([]int, len(shape))
	}
	if end == nil {
		end = append([]int(nil), shape...)
	}
	if len(begin) != len(shape) || len(end) != len(shape) {
		return nil, nil, fmt.Errorf("read %s: want %d indices", name, len(shape))
	}
	for d := range shape {
		if begin[d] < 0 || end[d] > shape[d] || begin[d] > end[d] {
			return nil, nil, fmt.Errorf("read %s: range [%d,%d) out of bounds on dimension %d (length %d)",
				name, begin[d], end[d], d, shape[d])
		}
	}
	return begin, end, nil
}

// fillToNaN replaces every value equal to fill with NaN.
func fillToNaN(data []float64, fill float64) {
	for i, v := range data {
		if v == fill {
			data[i] = math.NaN()
		}
	}
}

// toFloat64s flattens a numeric scalar or a (possibly nested) numeric slice.
func toFloat64s(v any) ([]float64, error) {
	var out []float64
	var walk func(rv reflect.Value) error
	walk = func(rv reflect.Value) error {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := range rv.Len() {
				if err := walk(rv.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Float32, reflect.Float64:
			out = append(out, rv.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(rv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(rv.Uint()))
		case reflect.Interface:
			return walk(rv.Elem())
		default:
			return fmt.Errorf("unsupported value type %s", rv.Type())
		}
		return nil
	}
	if err := walk(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}

// nestedLengths records the lengths of each nesting level below the first
// element of v into shape[1:].
func nestedLengths(v any, shape []int) {
	rv := reflect.ValueOf(v)
	for d := 1; d < len(shape); d++ {
		for rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Slice || rv.Len() == 0 {
			return
		}
		rv = rv.Index(0)
		for rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return
		}
		shape[d] = rv.Len()
	}
}
