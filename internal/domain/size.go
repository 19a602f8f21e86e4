package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ImageSize is a pixel size.
type ImageSize struct {
	Width  int
	Height int
}

func (s ImageSize) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// ParseImageSize parses "WIDTHxHEIGHT".
func ParseImageSize(s string) (ImageSize, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return ImageSize{}, fmt.Errorf("image size %q: want WIDTHxHEIGHT", s)
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return ImageSize{}, fmt.Errorf("image size %q: want positive integers", s)
	}
	return ImageSize{Width: width, Height: height}, nil
}

// ParseImageSizes parses a comma-separated list of REGION=WIDTHxHEIGHT
// entries.
func ParseImageSizes(s string) (map[string]ImageSize, error) {
	sizes := make(map[string]ImageSize)
	for _, item := range splitList(s) {
		region, size, ok := strings.Cut(item, "=")
		region = strings.TrimSpace(region)
		if !ok || region == "" {
			return nil, fmt.Errorf("image size entry %q: want REGION=WIDTHxHEIGHT", item)
		}
		sz, err := ParseImageSize(size)
		if err != nil {
			return nil, err
		}
		sizes[region] = sz
	}
	return sizes, nil
}
