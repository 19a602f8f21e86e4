package imageproc

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

func canvas(w, h int, bg color.Color) *image.NRGBA {
	return imaging.New(w, h, bg)
}

func TestTrim(t *testing.T) {
	img := canvas(100, 80, color.Transparent)
	// White pixels count as margin.
	img.Set(5, 5, color.White)
	img.Set(20, 30, color.Black)
	img.Set(60, 50, color.RGBA{R: 200, A: 255})

	out := Trim(img)
	assert.Equal(t, 41, out.Bounds().Dx())
	assert.Equal(t, 21, out.Bounds().Dy())
	_, _, _, a := out.At(0, 0).RGBA()
	assert.NotZero(t, a)
}

func TestTrim_Blank(t *testing.T) {
	out := Trim(canvas(10, 10, color.White))
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
}

func TestFinish(t *testing.T) {
	img := canvas(100, 80, color.Black)
	out := Finish(img, &domain.ImageSize{Width: 30, Height: 20})
	assert.Equal(t, image.Rect(0, 0, 30, 20), out.Bounds())

	out = Finish(img, nil)
	assert.Equal(t, image.Rect(0, 0, 100, 80), out.Bounds())
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GFS", "WA", "2019010100", "mslp", "img.png")
	require.NoError(t, Save(canvas(4, 4, color.Black), path))

	back, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), back.Bounds())
}
