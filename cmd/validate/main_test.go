package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/fixture"
)

func writeControls(t *testing.T, namelist string) paths {
	t.Helper()
	dir := t.TempDir()
	p := paths{
		namelist: filepath.Join(dir, "namelist"),
		domains:  filepath.Join(dir, "domains"),
		data:     dir,
	}
	require.NoError(t, os.WriteFile(p.namelist, []byte(namelist), 0o644))
	require.NoError(t, os.WriteFile(p.domains, []byte("WA: 24, -20, 0, 24\n"), 0o644))
	return p
}

func TestRun_Passes(t *testing.T) {
	p := writeControls(t, "init: 2024071500\nm_lev_vars: pv 300 500\ns_lev_vars: mslp, rainfall\nregion: WA\nfore: 3\n")
	init, err := domain.ParseInitTime("2024071500")
	require.NoError(t, err)
	require.NoError(t, fixture.Write(p.data, init, []int{3}, fixture.DefaultGrid))

	var out bytes.Buffer
	code := run(p, &out)
	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_ReportsEveryFailure(t *testing.T) {
	p := writeControls(t, "init: 2024071500\nm_lev_vars: pv 310\ns_lev_vars: radar, mslp\nregion: WA, Mordor\nfore: 3\n")

	var out bytes.Buffer
	code := run(p, &out)
	assert.Equal(t, 1, code)

	s := out.String()
	assert.Contains(t, s, "Validation FAILED.")
	assert.Contains(t, s, `region "Mordor"`)
	assert.Contains(t, s, "radar")
	assert.Contains(t, s, "analysis_gfs_4_20240715_0000_000.nc")
	assert.Contains(t, s, "Required variables exist")
}

func TestRun_MissingLevel(t *testing.T) {
	p := writeControls(t, "init: 2024071500\nm_lev_vars: theta 310\nregion: WA\nfore: 3\n")
	init, err := domain.ParseInitTime("2024071500")
	require.NoError(t, err)
	require.NoError(t, fixture.Write(p.data, init, []int{3}, fixture.DefaultGrid))

	var out bytes.Buffer
	assert.Equal(t, 1, run(p, &out))
	assert.Contains(t, out.String(), "no 310 hPa level")
}

func TestRun_BadNamelist(t *testing.T) {
	p := writeControls(t, "region: WA\n")

	var out bytes.Buffer
	assert.Equal(t, 1, run(p, &out))
	assert.Contains(t, out.String(), "init is required")
}
