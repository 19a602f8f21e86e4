package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LevelProduct is a multi-level namelist entry: a product key followed by
// the pressure levels (hPa) to plot it on.
type LevelProduct struct {
	Product string
	Levels  []int
}

// Namelist holds the run parameters for a dispatch.
type Namelist struct {
	Inits       []InitTime
	MultiLevel  []LevelProduct
	SingleLevel []string
	Regions     []string
	Forecast    []int
}

// ParseNamelist reads "key: value" lines. Recognized keys are init,
// m_lev_vars, s_lev_vars, region and fore; anything else is ignored.
func ParseNamelist(r io.Reader) (*Namelist, error) {
	n := &Namelist{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := n.set(strings.TrimSpace(key), splitList(value)); err != nil {
			return nil, fmt.Errorf("namelist line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read namelist: %w", err)
	}

	if len(n.Inits) == 0 {
		return nil, errors.New("namelist: init is required")
	}
	if len(n.Regions) == 0 {
		return nil, errors.New("namelist: region is required")
	}
	if len(n.Forecast) == 0 {
		n.Forecast = DefaultForecastHours()
	}
	return n, nil
}

func (n *Namelist) set(key string, items []string) error {
	switch key {
	case "init":
		for _, s := range items {
			it, err := ParseInitTime(s)
			if err != nil {
				return err
			}
			n.Inits = append(n.Inits, it)
		}
	case "m_lev_vars":
		for _, s := range items {
			fields := strings.Fields(s)
			lp := LevelProduct{Product: fields[0]}
			for _, f := range fields[1:] {
				lev, err := strconv.Atoi(f)
				if err != nil || lev <= 0 {
					return fmt.Errorf("m_lev_vars %s: invalid level %q", lp.Product, f)
				}
				lp.Levels = append(lp.Levels, lev)
			}
			if len(lp.Levels) == 0 {
				return fmt.Errorf("m_lev_vars %s: no levels given", lp.Product)
			}
			n.MultiLevel = append(n.MultiLevel, lp)
		}
	case "s_lev_vars":
		n.SingleLevel = append(n.SingleLevel, items...)
	case "region":
		n.Regions = append(n.Regions, items...)
	case "fore":
		for _, s := range items {
			fh, err := strconv.Atoi(s)
			if err != nil || fh < 0 {
				return fmt.Errorf("fore: invalid forecast hour %q", s)
			}
			n.Forecast = append(n.Forecast, fh)
		}
	}
	return nil
}

// Jobs expands the namelist into one job per region, init time and
// product/level, looking up region boxes in the domain table.
func (n *Namelist) Jobs(d *Domains) ([]Job, error) {
	var jobs []Job
	for _, name := range n.Regions {
		region, ok := d.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("region %q not found in domain table", name)
		}
		for _, init := range n.Inits {
			for _, lp := range n.MultiLevel {
				for _, lev := range lp.Levels {
					jobs = append(jobs, Job{
						Product:  lp.Product,
						Level:    lev,
						Init:     init,
						Region:   region.Name,
						Box:      region.Box,
						Forecast: n.Forecast,
					})
				}
			}
			for _, p := range n.SingleLevel {
				jobs = append(jobs, Job{
					Product:  p,
					Init:     init,
					Region:   region.Name,
					Box:      region.Box,
					Forecast: n.Forecast,
				})
			}
		}
	}
	return jobs, nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
