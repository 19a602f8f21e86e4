package netcdf

import (
	"fmt"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// hdfDataset reads NetCDF-4 (HDF5) files. The library slices only along the
// first dimension, so the remaining dimensions are cut in memory.
type hdfDataset struct {
	g api.Group
}

func openHDF(path string) (*hdfDataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open netcdf-4 dataset %s: %w", path, err)
	}
	return &hdfDataset{g: g}, nil
}

func (d *hdfDataset) Variables() []string { return d.g.ListVariables() }

func (d *hdfDataset) Dimensions(name string) []string {
	vg, err := d.g.GetVarGetter(name)
	if err != nil {
		return nil
	}
	return vg.Dimensions()
}

func (d *hdfDataset) Shape(name string) []int {
	vg, err := d.g.GetVarGetter(name)
	if err != nil {
		return nil
	}
	return varShape(vg)
}

// varShape measures a variable from its first-dimension length and the
// nesting of its first slice.
func varShape(vg api.VarGetter) []int {
	dims := vg.Dimensions()
	shape := make([]int, len(dims))
	if len(dims) == 0 {
		return shape
	}
	shape[0] = int(vg.Len())
	if len(dims) == 1 || shape[0] == 0 {
		return shape
	}
	first, err := vg.GetSlice(0, 1)
	if err != nil {
		return shape
	}
	nestedLengths(first, shape)
	return shape
}

func (d *hdfDataset) Read(name string, begin, end []int) ([]float64, error) {
	if !slices.Contains(d.Variables(), name) {
		return nil, fmt.Errorf("read %s: %w", name, ErrVariableNotFound)
	}
	vg, err := d.g.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	shape := varShape(vg)
	begin, end, err = checkBounds(name, shape, begin, end)
	if err != nil {
		return nil, err
	}

	var raw any
	if len(shape) == 0 {
		raw, err = vg.Values()
	} else {
		raw, err = vg.GetSlice(int64(begin[0]), int64(end[0]))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data, err := toFloat64s(raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if len(shape) > 1 {
		sub := append([]int{end[0] - begin[0]}, shape[1:]...)
		subBegin := append([]int{0}, begin[1:]...)
		subEnd := append([]int{sub[0]}, end[1:]...)
		data = hyperslab(data, sub, subBegin, subEnd)
	}

	if fv, ok := vg.Attributes().Get("_FillValue"); ok {
		fill, err := toFloat64s(fv)
		if err == nil && len(fill) > 0 {
			fillToNaN(data, fill[0])
		}
	}
	return data, nil
}

func (d *hdfDataset) Close() error {
	d.g.Close()
	return nil
}
