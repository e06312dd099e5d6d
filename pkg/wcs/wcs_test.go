package wcs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sedstack/pkg/fitsio"
)

func testHeader() *fitsio.Header {
	h := fitsio.NewHeader()
	h.SetFloat("CRPIX1", 100.0, "")
	h.SetFloat("CRPIX2", 100.0, "")
	h.SetFloat("CRVAL1", 237.2, "")
	h.SetFloat("CRVAL2", 34.4, "")
	h.SetFloat("CD1_1", -0.00027, "")
	h.SetFloat("CD1_2", 0.0, "")
	h.SetFloat("CD2_1", 0.0, "")
	h.SetFloat("CD2_2", 0.00027, "")
	return h
}

func TestFromHeader(t *testing.T) {
	tr, err := FromHeader(testHeader())
	require.NoError(t, err)
	require.NotNil(t, tr)
}

func TestFromHeaderCDELTFallback(t *testing.T) {
	h := fitsio.NewHeader()
	h.SetFloat("CRPIX1", 50.0, "")
	h.SetFloat("CRPIX2", 50.0, "")
	h.SetFloat("CRVAL1", 180.0, "")
	h.SetFloat("CRVAL2", 0.0, "")
	h.SetFloat("CDELT1", -0.0003, "")
	h.SetFloat("CDELT2", 0.0003, "")

	tr, err := FromHeader(h)
	require.NoError(t, err)

	x, y := tr.WorldToPixel(180.0, 0.0)
	assert.InDelta(t, 50.0, x, 1e-9)
	assert.InDelta(t, 50.0, y, 1e-9)
}

func TestFromHeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fitsio.Header)
	}{
		{"missing CRPIX1", func(h *fitsio.Header) { h2 := fitsio.NewHeader(); *h = *h2 }},
		{"singular matrix", func(h *fitsio.Header) {
			h.SetFloat("CD1_1", 0, "")
			h.SetFloat("CD2_2", 0, "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHeader()
			tt.mutate(h)
			_, err := FromHeader(h)
			assert.Error(t, err)
		})
	}
}

func TestReferencePointMapsToCRPIX(t *testing.T) {
	tr, err := FromHeader(testHeader())
	require.NoError(t, err)

	x, y := tr.WorldToPixel(237.2, 34.4)
	assert.InDelta(t, 100.0, x, 1e-9)
	assert.InDelta(t, 100.0, y, 1e-9)

	ra, dec := tr.PixelToWorld(100.0, 100.0)
	assert.InDelta(t, 237.2, ra, 1e-9)
	assert.InDelta(t, 34.4, dec, 1e-9)
}

func TestRoundTrip(t *testing.T) {
	tr, err := FromHeader(testHeader())
	require.NoError(t, err)

	// Pixel -> world -> pixel must close to well under a hundredth of a
	// pixel anywhere on a realistic detector.
	for _, p := range [][2]float64{{1, 1}, {50, 50}, {100, 150}, {150, 75}, {200, 200}, {37.25, 181.5}} {
		ra, dec := tr.PixelToWorld(p[0], p[1])
		x, y := tr.WorldToPixel(ra, dec)
		assert.InDelta(t, p[0], x, 1e-2, "x for %v", p)
		assert.InDelta(t, p[1], y, 1e-2, "y for %v", p)
	}
}

func TestWorldToPixelAllPreservesOrder(t *testing.T) {
	tr, err := FromHeader(testHeader())
	require.NoError(t, err)

	world := [][2]float64{}
	for _, p := range [][2]float64{{50, 50}, {100, 150}, {150, 75}} {
		ra, dec := tr.PixelToWorld(p[0], p[1])
		world = append(world, [2]float64{ra, dec})
	}

	pix := tr.WorldToPixelAll(world)
	require.Len(t, pix, 3)
	assert.InDelta(t, 50.0, pix[0][0], 1e-6)
	assert.InDelta(t, 150.0, pix[1][1], 1e-6)
	assert.InDelta(t, 150.0, pix[2][0], 1e-6)
}

func TestParseHourAngle(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12:00:00", 180.0},
		{"1:30:00", 22.5},
		{"00:00:00", 0.0},
		{"23:59:60", 360.0},
		{"6:30", 97.5},
	}

	for _, tt := range tests {
		got, err := ParseHourAngle(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestParseDegrees(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30:00:00", 30.0},
		{"-05:30:00", -5.5},
		{"+12:15:00", 12.25},
		{"-0:0:36", -0.01},
	}

	for _, tt := range tests {
		got, err := ParseDegrees(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestParseSexagesimalErrors(t *testing.T) {
	for _, in := range []string{"", "a:b:c", "1:2:3:4", "12:-30:00"} {
		_, err := ParseDegrees(in)
		assert.Error(t, err, in)
	}
}

func TestHourAngleMatchesDegrees(t *testing.T) {
	ha, err := ParseHourAngle("17:48:00")
	require.NoError(t, err)
	assert.InDelta(t, (17.0+48.0/60.0)*15.0, ha, 1e-9)
	assert.False(t, math.Signbit(ha))
}
