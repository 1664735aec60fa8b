package vmax

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
)

// ReadPalette reads a paletteN.png color table. The file is expected to be
// 256x1 RGBA8; unexpected dimensions are reported through warn and up to 256
// pixels are read anyway. An undecodable image is fatal for the model.
func ReadPalette(path string, warn func(format string, args ...any)) (Palette, error) {
	var palette Palette
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return palette, fmt.Errorf("%w: %s", ErrAssetMissing, path)
		}
		return palette, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return palette, fmt.Errorf("decode palette %s: %w", path, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != NumColors || bounds.Dy() != 1 {
		if warn != nil {
			warn("palette %s: expected a 256x1 image, got %dx%d", path, bounds.Dx(), bounds.Dy())
		}
	}
	n := bounds.Dx()
	if n > NumColors {
		n = NumColors
	}
	for i := 0; i < n; i++ {
		// NRGBA keeps alpha straight; RGBA() would premultiply.
		c := color.NRGBAModel.Convert(img.At(bounds.Min.X+i, bounds.Min.Y)).(color.NRGBA)
		palette[i] = RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return palette, nil
}
