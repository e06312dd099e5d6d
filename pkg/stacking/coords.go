// Package stacking turns a source catalog plus one wide-field image into a
// single high-signal stacked stamp: it resolves catalog positions to
// pixels, cuts fixed-size stamps around each source, and combines them
// with a trimmed mean and a robust per-pixel error estimate.
package stacking

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"sedstack/pkg/wcs"
)

// ErrEmptyCatalog means no usable coordinates survived parsing. This is
// fatal for the image being processed.
var ErrEmptyCatalog = errors.New("no valid coordinates found in region catalog")

// A PixelCoord is a 0-based (x, y) position on an image plane.
type PixelCoord struct {
	X, Y float64
}

// ResolveCatalog parses region-file lines of the form "point(<ra>,<dec>)"
// and converts them to 0-based pixel coordinates via tr. Coordinates may
// be decimal degrees or sexagesimal (hour-angle RA, degree Dec) - a colon
// in either component selects sexagesimal for both. Lines without the
// point token, or starting with '#', are ignored; malformed point lines
// are logged and skipped. Output order matches catalog order.
func ResolveCatalog(tr *wcs.Transform, lines []string) ([]PixelCoord, error) {
	world := [][2]float64{}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "point") || strings.HasPrefix(line, "#") {
			continue
		}

		s := strings.ReplaceAll(line, "point(", "")
		s = strings.ReplaceAll(s, ")", "")
		parts := strings.Split(s, ",")
		if len(parts) < 2 {
			log.Warn("skipping malformed catalog line", "line", line)
			continue
		}

		raStr := strings.TrimSpace(parts[0])
		decStr := strings.TrimSpace(parts[1])

		ra, dec, err := parseCoordPair(raStr, decStr)
		if err != nil {
			log.Warn("skipping malformed catalog line", "line", line, "err", err)
			continue
		}
		world = append(world, [2]float64{ra, dec})
	}

	if len(world) == 0 {
		return nil, ErrEmptyCatalog
	}

	// The transform speaks the 1-based FITS convention; shift to 0-based
	// array indices.
	coords := make([]PixelCoord, len(world))
	for i, p := range tr.WorldToPixelAll(world) {
		coords[i] = PixelCoord{X: p[0] - 1, Y: p[1] - 1}
	}
	return coords, nil
}

// ResolveCatalogFile is ResolveCatalog applied to the contents of path.
func ResolveCatalogFile(tr *wcs.Transform, path string) ([]PixelCoord, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read region file %s", path)
	}
	coords, err := ResolveCatalog(tr, lines)
	return coords, errors.Wrapf(err, "region file %s", path)
}

func parseCoordPair(raStr, decStr string) (float64, float64, error) {
	if strings.Contains(raStr, ":") || strings.Contains(decStr, ":") {
		ra, err := wcs.ParseHourAngle(raStr)
		if err != nil {
			return 0, 0, err
		}
		dec, err := wcs.ParseDegrees(decStr)
		if err != nil {
			return 0, 0, err
		}
		return ra, dec, nil
	}

	ra, err := strconv.ParseFloat(raStr, 64)
	if err != nil {
		return 0, 0, err
	}
	dec, err := strconv.ParseFloat(decStr, 64)
	if err != nil {
		return 0, 0, err
	}
	return ra, dec, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
