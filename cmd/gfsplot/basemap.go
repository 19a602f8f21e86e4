package main

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/gfs-plot/internal/adapter/imageproc"
	"github.com/couchcryptid/gfs-plot/internal/adapter/render"
	"github.com/couchcryptid/gfs-plot/internal/adapter/shapefile"
	"github.com/couchcryptid/gfs-plot/internal/diagnostic"
	"github.com/couchcryptid/gfs-plot/internal/domain"
)

var overlayColors = []struct {
	name string
	c    color.Color
}{
	{"black", color.Black},
	{"white", color.White},
}

func newBasemapCmd() *cobra.Command {
	var ro regionOpts
	cmd := &cobra.Command{
		Use:   "basemap",
		Short: "Draw the boundary and graticule overlays for a region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			region, err := ro.resolve(e)
			if err != nil {
				return err
			}
			paths, err := drawBasemaps(e, region)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	cmd.Flags().AddFlagSet(ro.flags())
	cmd.MarkFlagsMutuallyExclusive("region", "bbox")
	cmd.MarkFlagsOneRequired("region", "bbox")
	return cmd
}

// drawBasemaps writes map_<colour>_<region>.png and grid_<colour>_<region>.png
// into <image root>/GFS/<region>. Boundary maps need BOUNDARIES_SHAPEFILE
// and are skipped without it.
func drawBasemaps(e *env, region domain.Region) ([]string, error) {
	dir := filepath.Join(e.cfg.ImageDir, "GFS", region.Name)
	chart := diagnostic.Chart{Extent: region.Box}

	lines, err := e.outlines()
	if err != nil {
		return nil, err
	}
	if lines == nil {
		e.logger.Warn("no boundaries shapefile configured, skipping boundary maps")
	}
	lines = shapefile.Within(lines, region.Box)

	var paths []string
	for _, oc := range overlayColors {
		if len(lines) > 0 {
			r := render.New(render.Options{Outlines: lines, OutlineColor: oc.c})
			path := filepath.Join(dir, fmt.Sprintf("map_%s_%s.png", oc.name, region.Name))
			if err := drawOverlay(r, chart, &e.cfg.BasemapSize, path); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}

		r := render.New(render.Options{Graticule: true, GraticuleColor: oc.c})
		path := filepath.Join(dir, fmt.Sprintf("grid_%s_%s.png", oc.name, region.Name))
		if err := drawOverlay(r, chart, e.cfg.ImageSize(region.Name), path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	e.logger.Info("basemaps written", "region", region.Name, "images", len(paths))
	return paths, nil
}

func drawOverlay(r *render.Renderer, chart diagnostic.Chart, size *domain.ImageSize, path string) error {
	img, err := r.Render(chart)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return imageproc.Save(imageproc.Finish(img, size), path)
}
