package stacking

import (
	"math"

	"sedstack/pkg/fitsio"
)

// ExtractStamps cuts a size x size block around each coordinate, using
// nearest-pixel indexing (no resampling). A stamp whose full extent does
// not fit inside the parent image is dropped silently - that is the
// expected rejection path for sources near the edge, not an error. The
// returned slice may be empty; the caller decides whether that is fatal.
//
// With half = size/2, a stamp spans rows and columns
// [round(c)-half, round(c)-half+size). Odd sizes center exactly on the
// rounded pixel; even sizes put the nominal center at offset size/2 from
// the minimum corner.
func ExtractStamps(img *fitsio.Image, coords []PixelCoord, size int) []*fitsio.Image {
	if size <= 0 {
		return nil
	}

	half := size / 2
	stamps := []*fitsio.Image{}

	for _, c := range coords {
		x0 := int(math.Round(c.X)) - half
		y0 := int(math.Round(c.Y)) - half
		if x0 < 0 || y0 < 0 || x0+size > img.Dx() || y0+size > img.Dy() {
			continue
		}
		stamps = append(stamps, img.SubImage(x0, y0, size, size))
	}

	return stamps
}
