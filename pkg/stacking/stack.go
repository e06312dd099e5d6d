package stacking

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"sedstack/pkg/fitsio"
)

// ErrEmptyStack means there were zero valid stamps to combine. Fatal for
// the file being stacked.
var ErrEmptyStack = errors.New("cannot stack an empty set of stamps")

// madScale converts a median absolute deviation into a standard-deviation
// equivalent for Gaussian data.
const madScale = 1.4826

// StackStamps combines same-shaped stamps into one averaged image plus a
// per-pixel error map.
//
// Each output pixel is the trimmed mean of that pixel across all stamps:
// sort the N values, drop floor(trimFraction*N) from each end, average the
// rest. trimFraction 0 is a plain mean; the valid domain is [0, 0.5).
//
// The error map is madScale * MAD / sqrt(N-1) per pixel, with N the full
// untrimmed stamp count. A single stamp has no spread to estimate, so
// N == 1 yields a zero error map.
func StackStamps(stamps []*fitsio.Image, trimFraction float64) (*fitsio.Image, *fitsio.Image, error) {
	n := len(stamps)
	if n == 0 {
		return nil, nil, ErrEmptyStack
	}
	if trimFraction < 0 || trimFraction >= 0.5 {
		return nil, nil, errors.Errorf("trim fraction %g outside [0, 0.5)", trimFraction)
	}

	w, h := stamps[0].Dx(), stamps[0].Dy()
	stacked := fitsio.NewImage(w, h)
	errMap := fitsio.NewImage(w, h)

	trim := int(trimFraction * float64(n))
	column := make([]float64, n)
	devs := make([]float64, n)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for i, st := range stamps {
				column[i] = st.At(x, y)
			}
			sort.Float64s(column)

			stacked.Set(x, y, stat.Mean(column[trim:n-trim], nil))

			if n > 1 {
				med := median(column)
				for i, v := range column {
					devs[i] = math.Abs(v - med)
				}
				sort.Float64s(devs)
				errMap.Set(x, y, madScale*median(devs)/math.Sqrt(float64(n-1)))
			}
		}
	}

	return stacked, errMap, nil
}

// median of an already sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
