package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomains = `
# name: lat1, lon1, lat2, lon2
WA: 25.0, -20.0, 0.0, 25.0
EA: 20.0, 20.0, -15.0, 55.0

unknownWA: 30, -25, -5, 30
`

func TestNormalizeBBox(t *testing.T) {
	t.Run("orders corners", func(t *testing.T) {
		b, err := NormalizeBBox(0, 25, 25, -20)
		require.NoError(t, err)
		assert.Equal(t, BBox{North: 25, West: -20, South: 0, East: 25}, b)
	})

	t.Run("equal latitudes", func(t *testing.T) {
		_, err := NormalizeBBox(10, 0, 10, 5)
		require.EqualError(t, err, "lat and lon values must be different")
	})

	t.Run("equal longitudes", func(t *testing.T) {
		_, err := NormalizeBBox(10, 5, 0, 5)
		require.EqualError(t, err, "lat and lon values must be different")
	})
}

func TestParseBBox(t *testing.T) {
	b, err := ParseBBox("-15, 55, 20, 20")
	require.NoError(t, err)
	assert.Equal(t, BBox{North: 20, West: 20, South: -15, East: 55}, b)
	assert.Equal(t, "20,20,-15,55", b.String())

	_, err = ParseBBox("1,2,3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 4 values")

	_, err = ParseBBox("1,2,x,4")
	require.Error(t, err)
}

func TestParseDomains(t *testing.T) {
	d, err := ParseDomains(strings.NewReader(testDomains))
	require.NoError(t, err)

	regions := d.Regions()
	require.Len(t, regions, 3)
	assert.Equal(t, "WA", regions[0].Name)
	assert.Equal(t, "EA", regions[1].Name)
	assert.Equal(t, "unknownWA", regions[2].Name)

	wa, ok := d.Lookup("WA")
	require.True(t, ok)
	assert.Equal(t, BBox{North: 25, West: -20, South: 0, East: 25}, wa.Box)

	_, ok = d.Lookup("nowhere")
	assert.False(t, ok)
}

func TestParseDomains_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing colon", "WA 25, -20, 0, 25", "domains line 1"},
		{"bad number", "WA: 25, west, 0, 25", "domains line 1 (WA)"},
		{"degenerate box", "\nWA: 25, -20, 25, 25", "domains line 2 (WA): lat and lon values must be different"},
		{"duplicate", "WA: 25, -20, 0, 25\nWA: 1, 1, 2, 2", `duplicate region "WA"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDomains(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDomains_NameFor(t *testing.T) {
	d, err := ParseDomains(strings.NewReader(testDomains))
	require.NoError(t, err)

	// Corners listed in the opposite order still match.
	box, err := NormalizeBBox(-15, 55, 20, 20)
	require.NoError(t, err)
	assert.Equal(t, "EA", d.NameFor(box))

	box, err = NormalizeBBox(-15, 55, 21, 20)
	require.NoError(t, err)
	assert.Equal(t, UnnamedRegion, d.NameFor(box))

	var empty *Domains
	assert.Equal(t, UnnamedRegion, empty.NameFor(box))
}
