package netcdf

import (
	"fmt"
	"os"
	"slices"

	"github.com/ctessum/cdf"
)

// classicDataset reads CDF-1 and CDF-2 files.
type classicDataset struct {
	f  *os.File
	nc *cdf.File
}

func openClassic(f *os.File) (*classicDataset, error) {
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open classic dataset %s: %w", f.Name(), err)
	}
	return &classicDataset{f: f, nc: nc}, nil
}

func (d *classicDataset) Variables() []string { return d.nc.Header.Variables() }

func (d *classicDataset) Dimensions(name string) []string {
	if !d.has(name) {
		return nil
	}
	return d.nc.Header.Dimensions(name)
}

func (d *classicDataset) Shape(name string) []int {
	if !d.has(name) {
		return nil
	}
	return d.nc.Header.Lengths(name)
}

func (d *classicDataset) has(name string) bool { return slices.Contains(d.Variables(), name) }

func (d *classicDataset) Read(name string, begin, end []int) ([]float64, error) {
	if !d.has(name) {
		return nil, fmt.Errorf("read %s: %w", name, ErrVariableNotFound)
	}
	begin, end, err := checkBounds(name, d.Shape(name), begin, end)
	if err != nil {
		return nil, err
	}

	r := d.nc.Reader(name, begin, end)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data, err := toFloat64s(buf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if fv := d.nc.Header.GetAttribute(name, "_FillValue"); fv != nil {
		fill, err := toFloat64s(fv)
		if err != nil || len(fill) == 0 {
			return nil, fmt.Errorf("read %s: invalid _FillValue %T", name, fv)
		}
		fillToNaN(data, fill[0])
	}
	return data, nil
}

func (d *classicDataset) Close() error { return d.f.Close() }
