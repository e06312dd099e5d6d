package fitsio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageSubImage(t *testing.T) {
	img := NewImage(10, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, float64(y*10+x))
		}
	}

	sub := img.SubImage(3, 2, 4, 3)
	assert.Equal(t, 4, sub.Dx())
	assert.Equal(t, 3, sub.Dy())
	assert.Equal(t, 23.0, sub.At(0, 0))
	assert.Equal(t, 46.0, sub.At(3, 2))

	// SubImage copies: mutating the cutout leaves the parent alone.
	sub.Set(0, 0, -1)
	assert.Equal(t, 23.0, img.At(3, 2))
}

func TestImageMinMax(t *testing.T) {
	img := NewImage(3, 3)
	img.Set(1, 1, 9.5)
	img.Set(2, 0, -4.0)

	min, max := img.MinMax()
	assert.Equal(t, -4.0, min)
	assert.Equal(t, 9.5, max)
}

func TestHeaderTypedAccess(t *testing.T) {
	h := NewHeader()
	h.SetFloat("CD1_1", -0.00027, "degrees per pixel")
	h.SetInt("NAXIS1", 200, "")
	h.SetBool("SIMPLE", true, "")
	h.SetString("FILTER", "r", "")

	f, ok := h.Float("cd1_1")
	require.True(t, ok, "keyword lookup is case-insensitive")
	assert.Equal(t, -0.00027, f)

	i, ok := h.Int("NAXIS1")
	require.True(t, ok)
	assert.Equal(t, 200, i)

	assert.Equal(t, "T", func() string { v, _ := h.Get("SIMPLE"); return v }())
	assert.Equal(t, "r", h.Str("FILTER"))

	_, ok = h.Float("NOPE")
	assert.False(t, ok)
}

func TestHeaderSetReplaces(t *testing.T) {
	h := NewHeader()
	h.SetFloat("ZEROPT", 24.0, "")
	h.SetFloat("ZEROPT", 25.0, "")

	assert.Len(t, h.Cards(), 1)
	v, _ := h.Float("ZEROPT")
	assert.Equal(t, 25.0, v)

	// HISTORY accumulates instead.
	h.AddHistory("first")
	h.AddHistory("second")
	assert.Len(t, h.Cards(), 3)
}

func TestWriteReadRoundTrip(t *testing.T) {
	img := NewImage(7, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			img.Set(x, y, float64(x)*1.5-float64(y)*0.25)
		}
	}
	errMap := NewImage(7, 5)
	errMap.Set(3, 3, 0.125)

	hdr := NewHeader()
	hdr.SetFloat("ZEROPT", 25.0, "Magnitude zeropoint")
	hdr.SetString("OBJECT", "ROUND_TRIP", "")
	hdr.AddHistory("written by the round-trip test")

	path := filepath.Join(t.TempDir(), "roundtrip.fits")
	out := &File{HDUs: []*HDU{
		{Header: hdr},
		{Name: "SCI", Header: NewHeader(), Image: img},
		{Name: "ERR", Header: NewHeader(), Image: errMap},
	}}
	require.NoError(t, Write(path, out))

	in, err := Read(path)
	require.NoError(t, err)
	require.Len(t, in.HDUs, 3)

	prim := in.Primary()
	assert.Nil(t, prim.Image)
	zp, ok := prim.Header.Float("ZEROPT")
	require.True(t, ok)
	assert.Equal(t, 25.0, zp)
	assert.Equal(t, "ROUND_TRIP", prim.Header.Str("OBJECT"))

	sci, ok := in.ByName("SCI")
	require.True(t, ok)
	require.Equal(t, 7, sci.Image.Dx())
	require.Equal(t, 5, sci.Image.Dy())
	// Data went through float32 on disk.
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			assert.InDelta(t, img.At(x, y), sci.Image.At(x, y), 1e-5)
		}
	}

	errHDU, ok := in.ByName("ERR")
	require.True(t, ok)
	assert.InDelta(t, 0.125, errHDU.Image.At(3, 3), 1e-7)

	_, ok = in.ByName("NOPE")
	assert.False(t, ok)
}

func TestWritePrimaryWithImage(t *testing.T) {
	img := NewImage(4, 4)
	img.Set(1, 2, 42.0)

	hdr := NewHeader()
	hdr.SetFloat("CRPIX1", 2.0, "")

	path := filepath.Join(t.TempDir(), "primary.fits")
	require.NoError(t, Write(path, &File{HDUs: []*HDU{{Header: hdr, Image: img}}}))

	in, err := Read(path)
	require.NoError(t, err)
	require.Len(t, in.HDUs, 1)
	require.NotNil(t, in.Primary().Image)
	assert.InDelta(t, 42.0, in.Primary().Image.At(1, 2), 1e-6)
}

func TestWriteLongHistorySpansCards(t *testing.T) {
	note := strings.Repeat("stacked from catalog pass seven. ", 6) // ~200 bytes
	hdr := NewHeader()
	hdr.AddHistory(note)

	path := filepath.Join(t.TempDir(), "history.fits")
	require.NoError(t, Write(path, &File{HDUs: []*HDU{{Header: hdr}}}))

	in, err := Read(path)
	require.NoError(t, err)

	// The note comes back split across several HISTORY cards, none lost.
	var got strings.Builder
	n := 0
	for _, c := range in.Primary().Header.Cards() {
		if c.Key == "HISTORY" {
			got.WriteString(c.Comment)
			n++
		}
	}
	assert.Greater(t, n, 1)
	assert.Equal(t, strings.TrimRight(note, " "), strings.TrimRight(got.String(), " "))
}

func TestWriteOverlongValueRejected(t *testing.T) {
	hdr := NewHeader()
	hdr.SetString("OBJECT", strings.Repeat("x", 100), "")

	path := filepath.Join(t.TempDir(), "overlong.fits")
	err := Write(path, &File{HDUs: []*HDU{{Header: hdr}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OBJECT")
}

func TestSplitValueComment(t *testing.T) {
	tests := []struct {
		in          string
		value, note string
	}{
		{"                   T / conforms", "T", "conforms"},
		{"                25.0", "25.0", ""},
		{"'mJy/arcsec2'       / units with no slash", "'mJy/arcsec2'", "units with no slash"},
		{"'SCI     '          / extension name", "'SCI     '", "extension name"},
	}

	for _, tt := range tests {
		v, c := splitValueComment(tt.in)
		assert.Equal(t, tt.value, v, tt.in)
		assert.Equal(t, tt.note, c, tt.in)
	}
}
