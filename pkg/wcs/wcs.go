// Package wcs maps between sky coordinates (RA/Dec, degrees) and pixel
// coordinates using the FITS keywords CRPIX, CRVAL and the CD matrix
// (CDELT fallback), with a gnomonic (TAN) tangent-plane projection.
//
// Pixel coordinates follow the FITS convention: 1-based, with (1,1) the
// center of the bottom-left pixel. Callers wanting 0-based array indices
// subtract 1 themselves.
package wcs

import (
	"math"

	"github.com/pkg/errors"

	"sedstack/pkg/fitsio"
)

type Transform struct {
	crpix1, crpix2 float64
	crval1, crval2 float64
	cd             [4]float64 // row-major: CD1_1 CD1_2 CD2_1 CD2_2
	inv            [4]float64
}

// FromHeader builds a Transform from WCS keywords. The CD matrix is
// preferred; a diagonal CDELT1/CDELT2 pair is the fallback. The matrix
// must be invertible.
func FromHeader(h *fitsio.Header) (*Transform, error) {
	t := &Transform{}

	var ok bool
	if t.crpix1, ok = h.Float("CRPIX1"); !ok {
		return nil, errors.New("header missing CRPIX1")
	}
	if t.crpix2, ok = h.Float("CRPIX2"); !ok {
		return nil, errors.New("header missing CRPIX2")
	}
	if t.crval1, ok = h.Float("CRVAL1"); !ok {
		return nil, errors.New("header missing CRVAL1")
	}
	if t.crval2, ok = h.Float("CRVAL2"); !ok {
		return nil, errors.New("header missing CRVAL2")
	}

	if cd11, ok := h.Float("CD1_1"); ok {
		cd12, _ := h.Float("CD1_2")
		cd21, _ := h.Float("CD2_1")
		cd22, _ := h.Float("CD2_2")
		t.cd = [4]float64{cd11, cd12, cd21, cd22}
	} else if cdelt1, ok := h.Float("CDELT1"); ok {
		cdelt2, ok := h.Float("CDELT2")
		if !ok {
			return nil, errors.New("header has CDELT1 but no CDELT2")
		}
		t.cd = [4]float64{cdelt1, 0, 0, cdelt2}
	} else {
		return nil, errors.New("header carries neither CD matrix nor CDELT keywords")
	}

	det := t.cd[0]*t.cd[3] - t.cd[1]*t.cd[2]
	if det == 0 {
		return nil, errors.New("WCS matrix is singular")
	}
	t.inv = [4]float64{t.cd[3] / det, -t.cd[1] / det, -t.cd[2] / det, t.cd[0] / det}

	return t, nil
}

// WorldToPixel converts one (ra, dec) pair in degrees to 1-based pixel
// coordinates.
func (t *Transform) WorldToPixel(ra, dec float64) (float64, float64) {
	ra0 := t.crval1 * math.Pi / 180.0
	dec0 := t.crval2 * math.Pi / 180.0
	raR := ra * math.Pi / 180.0
	decR := dec * math.Pi / 180.0

	cosc := math.Sin(dec0)*math.Sin(decR) + math.Cos(dec0)*math.Cos(decR)*math.Cos(raR-ra0)
	xi := math.Cos(decR) * math.Sin(raR-ra0) / cosc
	eta := (math.Cos(dec0)*math.Sin(decR) - math.Sin(dec0)*math.Cos(decR)*math.Cos(raR-ra0)) / cosc

	xiDeg := xi * 180.0 / math.Pi
	etaDeg := eta * 180.0 / math.Pi

	x := t.crpix1 + t.inv[0]*xiDeg + t.inv[1]*etaDeg
	y := t.crpix2 + t.inv[2]*xiDeg + t.inv[3]*etaDeg
	return x, y
}

// PixelToWorld converts 1-based pixel coordinates to (ra, dec) in degrees,
// with RA normalized to [0, 360).
func (t *Transform) PixelToWorld(x, y float64) (float64, float64) {
	xiDeg := t.cd[0]*(x-t.crpix1) + t.cd[1]*(y-t.crpix2)
	etaDeg := t.cd[2]*(x-t.crpix1) + t.cd[3]*(y-t.crpix2)

	xi := xiDeg * math.Pi / 180.0
	eta := etaDeg * math.Pi / 180.0
	ra0 := t.crval1 * math.Pi / 180.0
	dec0 := t.crval2 * math.Pi / 180.0

	rho := math.Sqrt(xi*xi + eta*eta)
	if rho == 0 {
		return t.crval1, t.crval2
	}
	c := math.Atan(rho)

	dec := math.Asin(math.Cos(c)*math.Sin(dec0) + eta*math.Sin(c)*math.Cos(dec0)/rho)
	ra := ra0 + math.Atan2(xi*math.Sin(c), rho*math.Cos(dec0)*math.Cos(c)-eta*math.Sin(dec0)*math.Sin(c))

	raDeg := math.Mod(ra*180.0/math.Pi, 360.0)
	if raDeg < 0 {
		raDeg += 360.0
	}
	return raDeg, dec * 180.0 / math.Pi
}

// WorldToPixelAll batch-converts world coordinates, preserving order.
func (t *Transform) WorldToPixelAll(world [][2]float64) [][2]float64 {
	pix := make([][2]float64, len(world))
	for i, w := range world {
		x, y := t.WorldToPixel(w[0], w[1])
		pix[i] = [2]float64{x, y}
	}
	return pix
}
