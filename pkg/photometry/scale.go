package photometry

import (
	"math"

	"github.com/pkg/errors"

	"sedstack/pkg/fitsio"
)

// ErrMissingScaleMetadata means the header carries neither a CD matrix
// row nor a CDELT1 increment, so no angular pixel scale can be derived.
// Fatal for that file's photometry.
var ErrMissingScaleMetadata = errors.New("header carries neither CD1_1/CD1_2 nor CDELT1")

// PixelScale derives the angular pixel scale in arcsec/pixel. The CD
// matrix form is preferred; CDELT1 is the fallback for older headers.
func PixelScale(h *fitsio.Header) (float64, error) {
	cd11, ok1 := h.Float("CD1_1")
	cd12, ok2 := h.Float("CD1_2")
	if ok1 && ok2 {
		return math.Sqrt(cd11*cd11+cd12*cd12) * 3600.0, nil
	}

	if cdelt1, ok := h.Float("CDELT1"); ok {
		return math.Abs(cdelt1) * 3600.0, nil
	}

	return 0, ErrMissingScaleMetadata
}
