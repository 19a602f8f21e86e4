package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNamelist = `
init: 2019010100, 2019010112
m_lev_vars: theta 850 700, pv 300
s_lev_vars: CAPE_CIN, mslp
region: WA
fore: 3, 6, 9
colour: ignored
`

func TestParseNamelist(t *testing.T) {
	n, err := ParseNamelist(strings.NewReader(testNamelist))
	require.NoError(t, err)

	require.Len(t, n.Inits, 2)
	assert.Equal(t, "2019010112", n.Inits[1].String())
	want := []LevelProduct{
		{Product: "theta", Levels: []int{850, 700}},
		{Product: "pv", Levels: []int{300}},
	}
	if diff := cmp.Diff(want, n.MultiLevel); diff != "" {
		t.Errorf("MultiLevel mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"CAPE_CIN", "mslp"}, n.SingleLevel)
	assert.Equal(t, []string{"WA"}, n.Regions)
	assert.Equal(t, []int{3, 6, 9}, n.Forecast)
}

func TestParseNamelist_DefaultForecast(t *testing.T) {
	n, err := ParseNamelist(strings.NewReader("init: 2019010100\nregion: WA\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultForecastHours(), n.Forecast)
}

func TestParseNamelist_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing init", "region: WA", "init is required"},
		{"missing region", "init: 2019010100", "region is required"},
		{"bad init", "init: 2019010101\nregion: WA", "namelist line 1"},
		{"level not a number", "init: 2019010100\nm_lev_vars: theta high\nregion: WA", `invalid level "high"`},
		{"no levels", "init: 2019010100\nm_lev_vars: theta\nregion: WA", "no levels given"},
		{"bad fore", "init: 2019010100\nregion: WA\nfore: 3, -6", `invalid forecast hour "-6"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNamelist(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNamelist_Jobs(t *testing.T) {
	d, err := ParseDomains(strings.NewReader(testDomains))
	require.NoError(t, err)
	n, err := ParseNamelist(strings.NewReader(testNamelist))
	require.NoError(t, err)

	jobs, err := n.Jobs(d)
	require.NoError(t, err)
	// 2 inits x (3 level jobs + 2 single-level jobs)
	require.Len(t, jobs, 10)

	first := jobs[0]
	assert.Equal(t, "theta", first.Product)
	assert.Equal(t, 850, first.Level)
	assert.Equal(t, "WA", first.Region)
	assert.Equal(t, "theta_850", first.Dir())
	assert.Equal(t, []int{3, 6, 9}, first.Forecast)

	dirs := make([]string, 0, 5)
	for _, j := range jobs[:5] {
		dirs = append(dirs, j.Dir())
	}
	want := []string{"theta_850", "theta_700", "pv_300", "CAPE_CIN", "mslp"}
	if diff := cmp.Diff(want, dirs, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("job dirs mismatch (-want +got):\n%s", diff)
	}

	n.Regions = append(n.Regions, "Atlantis")
	_, err = n.Jobs(d)
	require.EqualError(t, err, `region "Atlantis" not found in domain table`)
}
