package plotting

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	"sedstack/pkg/fitsio"
)

// quicklookScale is the nearest-neighbor upscale factor; stacked stamps
// are only ~50 px on a side.
const quicklookScale = 4

// WriteQuicklook saves a grayscale PNG of img, stretched over its value
// range and gamma scaled so faint structure is visible, with the title
// drawn in the corner.
func WriteQuicklook(img *fitsio.Image, title, path string) error {
	min, max := img.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	gray := image.NewRGBA64(image.Rect(0, 0, img.Dx(), img.Dy()))
	for y := 0; y < img.Dy(); y++ {
		for x := 0; x < img.Dx(); x++ {
			g := gammaExpand((img.At(x, y) - min) / span)
			v := uint16(g * 65535.0)
			gray.Set(x, y, color.RGBA64{v, v, v, 0xFFFF})
		}
	}

	big := image.NewRGBA(image.Rect(0, 0, img.Dx()*quicklookScale, img.Dy()*quicklookScale))
	xdraw.NearestNeighbor.Scale(big, big.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)

	dc := gg.NewContextForImage(big)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 8, 16)
	if err := dc.SavePNG(path); err != nil {
		return errors.Wrapf(err, "save quicklook %s", path)
	}
	return nil
}

// sRGB gamma expansion, input in [0,1].
func gammaExpand(f float64) float64 {
	if f <= 0 {
		return 0
	}
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}
