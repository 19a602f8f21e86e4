package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImageSize(t *testing.T) {
	s, err := ParseImageSize("886x600")
	require.NoError(t, err)
	assert.Equal(t, ImageSize{Width: 886, Height: 600}, s)
	assert.Equal(t, "886x600", s.String())

	for _, bad := range []string{"", "886", "0x600", "ax600", "886x-1"} {
		_, err := ParseImageSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseImageSizes(t *testing.T) {
	sizes, err := ParseImageSizes("WA=886x600, EA=600x733")
	require.NoError(t, err)
	assert.Equal(t, map[string]ImageSize{
		"WA": {Width: 886, Height: 600},
		"EA": {Width: 600, Height: 733},
	}, sizes)

	sizes, err = ParseImageSizes("")
	require.NoError(t, err)
	assert.Empty(t, sizes)

	_, err = ParseImageSizes("WA:886x600")
	require.Error(t, err)
}
