package photometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sedstack/pkg/fitsio"
)

func TestPixelScaleFromCDMatrix(t *testing.T) {
	h := fitsio.NewHeader()
	h.SetFloat("CD1_1", -0.0001, "")
	h.SetFloat("CD1_2", 0.0, "")

	scale, err := PixelScale(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.36, scale, 1e-12)
}

func TestPixelScaleRotatedCDMatrix(t *testing.T) {
	h := fitsio.NewHeader()
	h.SetFloat("CD1_1", 0.00006, "")
	h.SetFloat("CD1_2", 0.00008, "")

	scale, err := PixelScale(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.36, scale, 1e-12)
}

func TestPixelScaleCDELTFallback(t *testing.T) {
	h := fitsio.NewHeader()
	h.SetFloat("CDELT1", -0.0002, "")

	scale, err := PixelScale(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.72, scale, 1e-12)
}

func TestPixelScaleIncompleteCDFallsBack(t *testing.T) {
	// Only one CD element present: fall back to CDELT1, as readers of
	// older headers do.
	h := fitsio.NewHeader()
	h.SetFloat("CD1_1", -0.0001, "")
	h.SetFloat("CDELT1", -0.0002, "")

	scale, err := PixelScale(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.72, scale, 1e-12)
}

func TestPixelScaleMissingMetadata(t *testing.T) {
	h := fitsio.NewHeader()
	h.SetString("OBJECT", "NO_WCS_HERE", "")

	_, err := PixelScale(h)
	assert.ErrorIs(t, err, ErrMissingScaleMetadata)
}
