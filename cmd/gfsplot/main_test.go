package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/fixture"
)

// setupBase points the configuration at a fresh base directory holding a
// domain table, and clears the optional endpoints.
func setupBase(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	for k, v := range map[string]string{
		"SWIFT_GFS":            base,
		"GFS_DATA_DIR":         "",
		"GFS_IMAGE_DIR":        "",
		"GFS_NAMELIST":         "",
		"GFS_DOMAINS":          "",
		"WORKERS":              "2",
		"IMAGE_SIZES":          "",
		"BOUNDARIES_SHAPEFILE": "",
		"HTTP_ADDR":            "",
		"PUSHGATEWAY_URL":      "",
		"KAFKA_BROKERS":        "",
		"LOG_LEVEL":            "error",
	} {
		t.Setenv(k, v)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(base, "controls"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "controls", "domains"),
		[]byte("WA: 24, -20, 0, 24\nEA: 18, 30, -12, 52\n"), 0o644))
	return base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProductsCmd(t *testing.T) {
	out, err := execute(t, "products")
	require.NoError(t, err)
	assert.Contains(t, out, "PRODUCT")
	assert.Regexp(t, `(?m)^theta\s+multi\s+true$`, out)
	assert.Regexp(t, `(?m)^rainfall\s+single\s+false$`, out)
}

func TestPlotCmd_RegionFlags(t *testing.T) {
	setupBase(t)

	_, err := execute(t, "plot", "mslp", "--init", "2024071500")
	require.Error(t, err, "needs --region or --bbox")

	_, err = execute(t, "plot", "mslp", "--init", "2024071500", "--region", "WA", "--bbox=1,2,3,4")
	require.Error(t, err)

	_, err = execute(t, "plot", "mslp", "--init", "2024071500", "--region", "Atlantis")
	require.ErrorContains(t, err, "Atlantis")

	_, err = execute(t, "plot", "pv", "--init", "2024071500", "--region", "WA")
	require.ErrorContains(t, err, "pressure level required")
}

func TestPlotCmd_WritesImages(t *testing.T) {
	base := setupBase(t)
	init, err := domain.ParseInitTime("2024071500")
	require.NoError(t, err)
	require.NoError(t, fixture.Write(base, init, []int{3}, fixture.DefaultGrid))

	out, err := execute(t, "plot", "theta", "--level", "850", "--init", "2024071500", "--bbox=24,-20,0,24", "--fore", "3")
	require.NoError(t, err)

	paths := strings.Fields(out)
	require.Len(t, paths, 2)
	dir := filepath.Join(base, "MARTIN", "GFS", "WA", "2024071500", "theta_850")
	assert.Equal(t, filepath.Join(dir, "GFSanalysis_WA_2024071500_theta_850hPa.png"), paths[0])

	img, err := imaging.Open(paths[1])
	require.NoError(t, err)
	assert.Equal(t, 886, img.Bounds().Dx(), "WA images are resized to the configured size")
	assert.Equal(t, 600, img.Bounds().Dy())

	out, err = execute(t, "plot", "mslp", "--init", "2024071500", "--region", "WA", "--fore", "3")
	require.NoError(t, err)
	paths = strings.Fields(out)
	require.Len(t, paths, 2)
	img, err = imaging.Open(paths[1])
	require.NoError(t, err)
	assert.NotEqual(t, 886, img.Bounds().Dx(), "mslp images are only trimmed")
}

func TestPlotCmd_ForecastHoursFromNamelist(t *testing.T) {
	base := setupBase(t)
	init, err := domain.ParseInitTime("2024071500")
	require.NoError(t, err)
	require.NoError(t, fixture.Write(base, init, []int{6, 12}, fixture.DefaultGrid))
	require.NoError(t, os.WriteFile(filepath.Join(base, "controls", "namelist"),
		[]byte("init: 2024071500\ns_lev_vars: mslp\nregion: WA\nfore: 6, 12\n"), 0o644))

	out, err := execute(t, "plot", "mslp", "--init", "2024071500", "--region", "WA")
	require.NoError(t, err)

	dir := filepath.Join(base, "MARTIN", "GFS", "WA", "2024071500", "mslp")
	assert.Equal(t, []string{
		filepath.Join(dir, "GFSanalysis_WA_2024071500_mslp_SNGL.png"),
		filepath.Join(dir, "GFSforecast_WA_2024071506_mslp_SNGL_2024071500_006.png"),
		filepath.Join(dir, "GFSforecast_WA_2024071512_mslp_SNGL_2024071500_012.png"),
	}, strings.Fields(out))
}

func TestDispatchCmd(t *testing.T) {
	base := setupBase(t)
	init, err := domain.ParseInitTime("2024071500")
	require.NoError(t, err)
	require.NoError(t, fixture.Write(base, init, []int{3}, fixture.DefaultGrid))

	namelist := filepath.Join(base, "controls", "namelist")
	require.NoError(t, os.WriteFile(namelist, []byte(
		"init: 2024071500\ns_lev_vars: mslp, MD\nm_lev_vars: theta 850\nregion: WA\nfore: 3\n"), 0o644))

	_, err = execute(t, "dispatch")
	require.NoError(t, err)

	root := filepath.Join(base, "MARTIN", "GFS", "WA", "2024071500")
	for _, p := range []string{
		"mslp/GFSforecast_WA_2024071503_mslp_SNGL_2024071500_003.png",
		"MD/GFSanalysis_WA_2024071500_MD_SNGL.png",
		"theta_850/GFSanalysis_WA_2024071500_theta_850hPa.png",
	} {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(p)))
	}

	// An unknown product fails only its own job.
	require.NoError(t, os.WriteFile(namelist, []byte(
		"init: 2024071500\ns_lev_vars: mslp, typo_product\nregion: WA\nfore: 3\n"), 0o644))
	require.NoError(t, os.RemoveAll(filepath.Join(root, "mslp")))
	_, err = execute(t, "dispatch")
	require.ErrorContains(t, err, "1 of 2 jobs failed")
	require.ErrorContains(t, err, "typo_product")
	assert.FileExists(t, filepath.Join(root, "mslp", "GFSanalysis_WA_2024071500_mslp_SNGL.png"))
	assert.FileExists(t, filepath.Join(root, "mslp", "GFSforecast_WA_2024071503_mslp_SNGL_2024071500_003.png"))

	// A missing cycle fails its jobs and the command.
	require.NoError(t, os.WriteFile(namelist, []byte("init: 2024071506\ns_lev_vars: mslp\nregion: WA\n"), 0o644))
	_, err = execute(t, "dispatch")
	require.ErrorContains(t, err, "1 of 1 jobs failed")
}

func TestBasemapCmd(t *testing.T) {
	base := setupBase(t)

	shpPath := filepath.Join(base, "boundaries.shp")
	w, err := shp.Create(shpPath, shp.POLYLINE)
	require.NoError(t, err)
	w.Write(shp.NewPolyLine([][]shp.Point{{{X: -15, Y: 5}, {X: 0, Y: 12}, {X: 15, Y: 20}}}))
	w.Close()
	t.Setenv("BOUNDARIES_SHAPEFILE", shpPath)

	out, err := execute(t, "basemap", "--region", "WA")
	require.NoError(t, err)

	dir := filepath.Join(base, "MARTIN", "GFS", "WA")
	assert.Equal(t, []string{
		filepath.Join(dir, "map_black_WA.png"),
		filepath.Join(dir, "grid_black_WA.png"),
		filepath.Join(dir, "map_white_WA.png"),
		filepath.Join(dir, "grid_white_WA.png"),
	}, strings.Fields(out))

	img, err := imaging.Open(filepath.Join(dir, "map_white_WA.png"))
	require.NoError(t, err)
	assert.Equal(t, 1350, img.Bounds().Dx())
	assert.Equal(t, 900, img.Bounds().Dy())
}

func TestBasemapCmd_UnnamedBoxWithoutBoundaries(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "basemap", "--bbox=10,10,-10,40")
	require.NoError(t, err)
	dir := filepath.Join(base, "MARTIN", "GFS", domain.UnnamedRegion)
	assert.Equal(t, []string{
		filepath.Join(dir, "grid_black_unnamedregion.png"),
		filepath.Join(dir, "grid_white_unnamedregion.png"),
	}, strings.Fields(out))
}
