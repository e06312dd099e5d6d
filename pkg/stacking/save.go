package stacking

import (
	"sedstack/pkg/fitsio"
)

// SaveStacked writes the stacked image and its error map as a three-HDU
// FITS file: a metadata-only primary carrying the original header plus the
// zeropoint and a provenance note, then SCI and ERR image extensions.
func SaveStacked(path string, stacked, errMap *fitsio.Image, origHeader *fitsio.Header, zeropoint float64) error {
	hdr := origHeader.Copy()
	hdr.SetFloat("ZEROPT", zeropoint, "Magnitude zeropoint")
	hdr.AddHistory("Image stacked from multiple galaxy stamps.")

	f := &fitsio.File{HDUs: []*fitsio.HDU{
		{Header: hdr},
		{Name: "SCI", Header: fitsio.NewHeader(), Image: stacked},
		{Name: "ERR", Header: fitsio.NewHeader(), Image: errMap},
	}}

	return fitsio.Write(path, f)
}
