// Command validate checks a gfsplot deployment before a dispatch: the
// namelist and domain table parse and agree, every product is known, and the
// GFS files for each cycle exist and carry the variables and levels the
// products read.
//
// Paths default to the gfsplot environment (SWIFT_GFS, GFS_NAMELIST,
// GFS_DOMAINS, GFS_DATA_DIR) and can be overridden with flags.
//
// Usage:
//
//	go run ./cmd/validate -namelist controls/namelist -data /data/gfs
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/couchcryptid/gfs-plot/internal/adapter/netcdf"
	"github.com/couchcryptid/gfs-plot/internal/config"
	"github.com/couchcryptid/gfs-plot/internal/diagnostic"
	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type paths struct {
	namelist string
	domains  string
	data     string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	var p paths
	flag.StringVar(&p.namelist, "namelist", cfg.NamelistPath, "namelist path")
	flag.StringVar(&p.domains, "domains", cfg.DomainsPath, "domain table path")
	flag.StringVar(&p.data, "data", cfg.DataDir, "directory holding the GFS NetCDF files")
	flag.Parse()

	if code := run(p, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(p paths, out io.Writer) int {
	fmt.Fprintln(out, "=== gfsplot Deployment Validation ===")
	fmt.Fprintln(out)

	nl, nlPhase := validateNamelist(p.namelist)
	phases := []*phase{nlPhase}

	if nl != nil {
		d, regionPhase := validateRegions(nl, p.domains)
		phases = append(phases,
			regionPhase,
			validateProducts(nl),
			validateInputFiles(nl, p.data),
			validateVariables(nl, d, p.data),
		)
	}

	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", ph.name, status)
	}

	for _, ph := range phases {
		if ph.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateNamelist(path string) (*domain.Namelist, *phase) {
	p := &phase{name: "Namelist parses"}
	f, err := os.Open(path)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}
	defer f.Close()
	nl, err := domain.ParseNamelist(f)
	if err != nil {
		p.errorf("%s: %v", path, err)
		return nil, p
	}
	return nl, p
}

func validateRegions(nl *domain.Namelist, path string) (*domain.Domains, *phase) {
	p := &phase{name: "Regions exist in domain table"}
	f, err := os.Open(path)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}
	defer f.Close()
	d, err := domain.ParseDomains(f)
	if err != nil {
		p.errorf("%s: %v", path, err)
		return nil, p
	}
	for _, r := range nl.Regions {
		if _, ok := d.Lookup(r); !ok {
			p.errorf("region %q not in %s", r, path)
		}
	}
	return d, p
}

func validateProducts(nl *domain.Namelist) *phase {
	p := &phase{name: "Products are known"}
	for _, lp := range nl.MultiLevel {
		for _, lev := range lp.Levels {
			if err := pipeline.Validate(domain.Job{Product: lp.Product, Level: lev}); err != nil {
				p.errorf("m_lev_vars: %v", err)
			}
		}
	}
	for _, s := range nl.SingleLevel {
		if err := pipeline.Validate(domain.Job{Product: s}); err != nil {
			p.errorf("s_lev_vars: %v", err)
		}
	}
	return p
}

func validateInputFiles(nl *domain.Namelist, dir string) *phase {
	p := &phase{name: "Input files exist"}
	for _, init := range nl.Inits {
		for _, name := range []string{domain.AnalysisFile(init), domain.ForecastFile(init)} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				p.errorf("%s: %v", init, err)
			}
		}
	}
	return p
}

// probeBox is used to open a source when no namelist region resolves.
var probeBox = domain.BBox{North: 2, South: -2, West: 0, East: 4}

func validateVariables(nl *domain.Namelist, d *domain.Domains, dir string) *phase {
	p := &phase{name: "Required variables exist"}

	box := probeBox
	if d != nil {
		for _, name := range nl.Regions {
			if r, ok := d.Lookup(name); ok {
				box = r.Box
				break
			}
		}
	}

	var levels []int
	for _, lp := range nl.MultiLevel {
		levels = append(levels, lp.Levels...)
	}

	for _, init := range nl.Inits {
		checkFile(p, filepath.Join(dir, domain.AnalysisFile(init)), box, levels, false)
		checkFile(p, filepath.Join(dir, domain.ForecastFile(init)), box, levels, true)
	}
	return p
}

// checkFile reports the variables and pressure levels missing from one
// file. Unreadable files were already reported by the file phase.
func checkFile(p *phase, path string, box domain.BBox, levels []int, forecast bool) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	ds, err := netcdf.Open(path)
	if err != nil {
		p.errorf("%v", err)
		return
	}
	defer ds.Close()

	name := filepath.Base(path)
	vars := ds.Variables()
	for _, v := range diagnostic.Variables() {
		if !slices.Contains(vars, v) {
			p.errorf("%s: missing %s", name, v)
		}
	}

	step := netcdf.AnalysisStep
	if forecast {
		step = 0
	}
	src, err := netcdf.NewSource(ds, box, netcdf.Options{Step: step})
	if err != nil {
		p.errorf("%s: %v", name, err)
		return
	}
	if forecast {
		if _, ok := src.Find(diagnostic.RainfallPrefix); !ok {
			p.errorf("%s: no %s variable", name, diagnostic.RainfallPrefix)
		}
	}
	if len(levels) == 0 {
		return
	}
	have, err := src.LevelsOf(diagnostic.Variables()[0])
	if err != nil {
		p.errorf("%s: %v", name, err)
		return
	}
	for _, lev := range levels {
		if !slices.Contains(have, lev) {
			p.errorf("%s: no %d hPa level", name, lev)
		}
	}
}
