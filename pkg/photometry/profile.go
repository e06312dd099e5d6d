// Package photometry derives azimuthally-averaged radial profiles from
// stacked images, models the sky background, and resolves the angular
// pixel scale needed to convert flux to surface brightness.
package photometry

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"sedstack/pkg/fitsio"
)

// RadialProfile computes the azimuthally averaged profile of img about
// (cx, cy). Every pixel lands in the integer bin floor of its distance to
// the center; each populated bin reports the mean flux and the standard
// error of that mean (population std / sqrt(count)). Bins that no pixel
// falls into are omitted entirely, so the radius array can have gaps but
// never a zero-count division. The three returned slices are parallel.
func RadialProfile(img *fitsio.Image, cx, cy float64) ([]int, []float64, []float64) {
	// The farthest pixel from the center is always one of the corners.
	maxR := 0
	for _, corner := range [4][2]float64{{0, 0}, {float64(img.Dx() - 1), 0}, {0, float64(img.Dy() - 1)}, {float64(img.Dx() - 1), float64(img.Dy() - 1)}} {
		dx := corner[0] - cx
		dy := corner[1] - cy
		if r := int(math.Sqrt(dx*dx + dy*dy)); r > maxR {
			maxR = r
		}
	}
	bins := make([][]float64, maxR+1)

	for y := 0; y < img.Dy(); y++ {
		for x := 0; x < img.Dx(); x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			r := int(math.Sqrt(dx*dx + dy*dy))
			bins[r] = append(bins[r], img.At(x, y))
		}
	}

	radii := []int{}
	mean := []float64{}
	stderr := []float64{}

	for r, vals := range bins {
		if len(vals) == 0 {
			continue
		}
		radii = append(radii, r)
		mean = append(mean, stat.Mean(vals, nil))
		stderr = append(stderr, stat.PopStdDev(vals, nil)/math.Sqrt(float64(len(vals))))
	}

	return radii, mean, stderr
}
