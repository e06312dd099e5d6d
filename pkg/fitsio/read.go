// Package fitsio reads and writes a pragmatic subset of FITS: single-plane
// 2D image HDUs plus key-value headers. It covers what a stacking pipeline
// needs (primary image in, primary + SCI + ERR out) and nothing more.
package fitsio

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	blockSize  = 2880
	recordSize = 80
)

// An HDU is one header-data unit. Image is nil for metadata-only units.
// Name is the EXTNAME value ("" for the primary HDU).
type HDU struct {
	Name   string
	Header *Header
	Image  *Image
}

type File struct {
	HDUs []*HDU
}

func (f *File) Primary() *HDU { return f.HDUs[0] }

func (f *File) ByName(name string) (*HDU, bool) {
	for _, h := range f.HDUs {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return nil, false
}

func Read(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open fits %s", path)
	}
	defer r.Close()

	f, err := ReadFrom(r)
	return f, errors.Wrapf(err, "read fits %s", path)
}

func ReadFrom(r io.Reader) (*File, error) {
	f := &File{}

	for {
		hdu, err := readHDU(r)
		if err == io.EOF && len(f.HDUs) > 0 {
			return f, nil
		} else if err != nil {
			return nil, err
		}
		f.HDUs = append(f.HDUs, hdu)
	}
}

func readHDU(r io.Reader) (*HDU, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	hdu := &HDU{Name: hdr.Str("EXTNAME"), Header: hdr}

	naxis, _ := hdr.Int("NAXIS")
	switch naxis {
	case 0:
		return hdu, nil
	case 2:
		// fall through to the data unit below
	default:
		return nil, errors.Errorf("unsupported NAXIS=%d, want 0 or 2", naxis)
	}

	bitpix, ok := hdr.Int("BITPIX")
	if !ok {
		return nil, errors.New("header missing BITPIX")
	}
	w, okw := hdr.Int("NAXIS1")
	h, okh := hdr.Int("NAXIS2")
	if !okw || !okh || w <= 0 || h <= 0 {
		return nil, errors.Errorf("bad image dimensions NAXIS1=%d NAXIS2=%d", w, h)
	}

	bzero := 0.0
	bscale := 1.0
	if v, ok := hdr.Float("BZERO"); ok {
		bzero = v
	}
	if v, ok := hdr.Float("BSCALE"); ok {
		bscale = v
	}

	bpp := bitpix
	if bpp < 0 {
		bpp = -bpp
	}
	dataLen := w * h * bpp / 8
	padded := (dataLen + blockSize - 1) / blockSize * blockSize
	raw := make([]byte, padded)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "read data unit")
	}

	img := NewImage(w, h)
	pix := img.Values()
	for i := range pix {
		var v float64
		switch bitpix {
		case 8:
			v = float64(raw[i])
		case 16:
			v = float64(int16(binary.BigEndian.Uint16(raw[i*2:])))
		case 32:
			v = float64(int32(binary.BigEndian.Uint32(raw[i*4:])))
		case -32:
			v = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:])))
		case -64:
			v = math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
		default:
			return nil, errors.Errorf("unsupported BITPIX=%d", bitpix)
		}
		pix[i] = v*bscale + bzero
	}

	hdu.Image = img
	return hdu, nil
}

func readHeader(r io.Reader) (*Header, error) {
	hdr := NewHeader()
	block := make([]byte, blockSize)

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			if err == io.EOF && len(hdr.cards) == 0 {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "read header block")
		}

		for i := 0; i < blockSize/recordSize; i++ {
			record := string(block[i*recordSize : (i+1)*recordSize])
			keyword := strings.TrimSpace(record[:8])

			switch {
			case keyword == "END":
				return hdr, nil
			case keyword == "HISTORY" || keyword == "COMMENT":
				hdr.cards = append(hdr.cards, Card{Key: keyword, Comment: strings.TrimRight(record[8:], " ")})
			case len(record) > 10 && record[8] == '=':
				value, comment := splitValueComment(record[10:])
				hdr.append(Card{Key: keyword, Value: value, Comment: comment})
			}
		}
	}
}

// splitValueComment separates the value field from the trailing comment,
// respecting quoted string values which may themselves contain '/'.
func splitValueComment(s string) (string, string) {
	trimmed := strings.TrimLeft(s, " ")
	if strings.HasPrefix(trimmed, "'") {
		if end := strings.Index(trimmed[1:], "'"); end >= 0 {
			value := trimmed[:end+2]
			rest := trimmed[end+2:]
			if slash := strings.Index(rest, "/"); slash >= 0 {
				return strings.TrimSpace(value), strings.TrimSpace(rest[slash+1:])
			}
			return strings.TrimSpace(value), ""
		}
	}
	if slash := strings.Index(s, "/"); slash >= 0 {
		return strings.TrimSpace(s[:slash]), strings.TrimSpace(s[slash+1:])
	}
	return strings.TrimSpace(s), ""
}
