// Command genfixture writes synthetic GFS analysis and forecast files for
// smoke runs of gfsplot. The files use the NetCDF-3 classic format and the
// variable names of NCL-converted GRIB2 output, so every product can be
// plotted from them.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -out $SWIFT_GFS \
//	  -init 2024071500,2024071512 \
//	  -fore 3,6,9,12 \
//	  -res 1
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/fixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write the NetCDF files into")
	inits := flag.String("init", "", "comma-separated model cycles as YYYYMMDDHH")
	fore := flag.String("fore", "", "comma-separated forecast hours (default 3 to 72 every 3 hours)")
	res := flag.Float64("res", fixture.DefaultGrid.Res, "grid resolution in degrees")
	flag.Parse()

	if *out == "" || *inits == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -init")
	}
	if *res <= 0 || *res > 10 {
		return fmt.Errorf("-res %g: must be in (0, 10]", *res)
	}

	hours := domain.DefaultForecastHours()
	if *fore != "" {
		var err error
		if hours, err = parseHours(*fore); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	grid := fixture.Grid{Res: *res}
	for _, s := range strings.Split(*inits, ",") {
		init, err := domain.ParseInitTime(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		if err := fixture.Write(*out, init, hours, grid); err != nil {
			return fmt.Errorf("cycle %s: %w", init, err)
		}
		log.Printf("wrote %s", filepath.Join(*out, domain.AnalysisFile(init)))
		log.Printf("wrote %s (%d steps)", filepath.Join(*out, domain.ForecastFile(init)), len(hours))
	}
	return nil
}

func parseHours(s string) ([]int, error) {
	var hours []int
	for _, f := range strings.Split(s, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || h < 0 {
			return nil, fmt.Errorf("-fore: invalid forecast hour %q", f)
		}
		hours = append(hours, h)
	}
	return hours, nil
}
