// Package imageproc post-processes rendered charts: trimming the empty
// margin, scaling to the region's image size and writing PNG files.
package imageproc

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/couchcryptid/gfs-plot/internal/domain"
)

// Trim crops img to the smallest rectangle holding every pixel that is
// neither fully transparent nor white. A blank image is returned as is.
func Trim(img image.Image) image.Image {
	src := imaging.Clone(img)
	b := src.Bounds()
	box := image.Rectangle{Min: b.Max, Max: b.Min}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[(y-b.Min.Y)*src.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			p := row[(x-b.Min.X)*4 : (x-b.Min.X)*4+4]
			if p[3] == 0 || (p[0] == 0xff && p[1] == 0xff && p[2] == 0xff) {
				continue
			}
			box.Min.X = min(box.Min.X, x)
			box.Min.Y = min(box.Min.Y, y)
			box.Max.X = max(box.Max.X, x+1)
			box.Max.Y = max(box.Max.Y, y+1)
		}
	}
	if box.Empty() {
		return src
	}
	return imaging.Crop(src, box)
}

// Resize scales img to size with a Lanczos filter, ignoring aspect ratio.
func Resize(img image.Image, size domain.ImageSize) image.Image {
	return imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)
}

// Finish trims img and, when size is set, resizes it.
func Finish(img image.Image, size *domain.ImageSize) image.Image {
	img = Trim(img)
	if size != nil {
		img = Resize(img, *size)
	}
	return img
}

// Save writes img as a PNG file, creating missing parent directories.
func Save(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
