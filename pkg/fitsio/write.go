package fitsio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Keys the writer owns. These describe the physical layout of each HDU,
// so copies carried in a source header must not leak into the output.
var structuralKeys = map[string]bool{
	"SIMPLE": true, "BITPIX": true, "NAXIS": true, "NAXIS1": true,
	"NAXIS2": true, "EXTEND": true, "XTENSION": true, "PCOUNT": true,
	"GCOUNT": true, "BZERO": true, "BSCALE": true, "EXTNAME": true,
	"END": true,
}

// Write serializes f to path. Image data is written as 32-bit big-endian
// floats (BITPIX=-32). The file is staged in a temp file in the target
// directory and renamed into place, so readers never see a partial write.
func Write(path string, f *File) error {
	var buf bytes.Buffer

	for i, hdu := range f.HDUs {
		if err := writeHDU(&buf, hdu, i == 0); err != nil {
			return errors.Wrapf(err, "write fits %s hdu %d", path, i)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fits-*")
	if err != nil {
		return errors.Wrapf(err, "write fits %s", path)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write fits %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write fits %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write fits %s", path)
	}
	return nil
}

func writeHDU(buf *bytes.Buffer, hdu *HDU, primary bool) error {
	cards := []string{}

	if primary {
		cards = append(cards, formatCard("SIMPLE", "T", "conforms to FITS standard"))
	} else {
		cards = append(cards, formatCard("XTENSION", "'IMAGE   '", "image extension"))
	}

	if hdu.Image == nil {
		if !primary {
			return errors.New("extension HDU requires image data")
		}
		cards = append(cards,
			formatCard("BITPIX", "8", ""),
			formatCard("NAXIS", "0", ""),
			formatCard("EXTEND", "T", ""))
	} else {
		cards = append(cards,
			formatCard("BITPIX", "-32", "IEEE single precision floating point"),
			formatCard("NAXIS", "2", ""),
			formatCard("NAXIS1", fmt.Sprintf("%d", hdu.Image.Dx()), ""),
			formatCard("NAXIS2", fmt.Sprintf("%d", hdu.Image.Dy()), ""))
		if primary {
			cards = append(cards, formatCard("EXTEND", "T", ""))
		} else {
			cards = append(cards,
				formatCard("PCOUNT", "0", ""),
				formatCard("GCOUNT", "1", ""))
		}
	}

	if !primary && hdu.Name != "" {
		cards = append(cards, formatCard("EXTNAME", fmt.Sprintf("'%s'", hdu.Name), "extension name"))
	}

	if hdu.Header != nil {
		for _, c := range hdu.Header.Cards() {
			if structuralKeys[c.Key] {
				continue
			}
			if c.Key == "HISTORY" || c.Key == "COMMENT" {
				for _, chunk := range commentaryChunks(c.Comment) {
					cards = append(cards, pad80(fmt.Sprintf("%-8s%s", c.Key, chunk)))
				}
				continue
			}
			// keyword, "= ", then the value; losing any of that would
			// corrupt the card, so over-length values are an error.
			if len(c.Key)+2+len(c.Value) > recordSize {
				return errors.Errorf("header card %s: value %d bytes, too long for one record", c.Key, len(c.Value))
			}
			cards = append(cards, formatCard(c.Key, c.Value, c.Comment))
		}
	}

	cards = append(cards, pad80("END"))

	for _, c := range cards {
		buf.WriteString(c)
	}
	padBlock(buf, ' ')

	if hdu.Image != nil {
		for _, v := range hdu.Image.Values() {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], math.Float32bits(float32(v)))
			buf.Write(b[:])
		}
		padBlock(buf, 0)
	}

	return nil
}

func formatCard(key, value, comment string) string {
	s := fmt.Sprintf("%-8s= %20s", key, value)
	if comment != "" {
		s += " / " + comment
	}
	return pad80(s)
}

// commentaryChunks splits HISTORY/COMMENT text across as many cards as it
// needs, 72 text columns per card.
func commentaryChunks(s string) []string {
	const width = recordSize - 8
	chunks := []string{}
	for len(s) > width {
		chunks = append(chunks, s[:width])
		s = s[width:]
	}
	return append(chunks, s)
}

func pad80(s string) string {
	if len(s) > recordSize {
		s = s[:recordSize]
	}
	return s + string(bytes.Repeat([]byte{' '}, recordSize-len(s)))
}

// padBlock fills to the next 2880-byte boundary. Headers pad with spaces,
// data units pad with zeros.
func padBlock(buf *bytes.Buffer, filler byte) {
	if n := buf.Len() % blockSize; n != 0 {
		buf.Write(bytes.Repeat([]byte{filler}, blockSize-n))
	}
}
