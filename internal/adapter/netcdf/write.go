package netcdf

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// Dim is a named dimension of a file layout.
type Dim struct {
	Name string
	Len  int
}

// Var is a float32 variable of a file layout, stored row-major.
type Var struct {
	Name  string
	Dims  []string
	Data  []float32
	Attrs map[string]any
}

// Layout describes a classic NetCDF file to write.
type Layout struct {
	Dims  []Dim
	Vars  []Var
	Attrs map[string]any
}

// WriteClassic writes a CDF-1 file.
func WriteClassic(path string, l Layout) (err error) {
	names := make([]string, len(l.Dims))
	lengths := make([]int, len(l.Dims))
	for i, d := range l.Dims {
		names[i], lengths[i] = d.Name, d.Len
	}
	h := cdf.NewHeader(names, lengths)
	for k, v := range l.Attrs {
		h.AddAttribute("", k, v)
	}
	for _, v := range l.Vars {
		h.AddVariable(v.Name, v.Dims, []float32{0})
		for k, a := range v.Attrs {
			h.AddAttribute(v.Name, k, a)
		}
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	nc, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, v := range l.Vars {
		end := nc.Header.Lengths(v.Name)
		n := 1
		for _, e := range end {
			n *= e
		}
		if len(v.Data) != n {
			return fmt.Errorf("write %s: variable %s has %d values, want %d", path, v.Name, len(v.Data), n)
		}
		w := nc.Writer(v.Name, make([]int, len(end)), end)
		if _, err := w.Write(v.Data); err != nil {
			return fmt.Errorf("write %s: variable %s: %w", path, v.Name, err)
		}
	}
	return cdf.UpdateNumRecs(f)
}
