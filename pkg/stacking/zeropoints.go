package stacking

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadZeropoints reads a "<filename> <float>" whitespace-separated table
// into a map. The table is loaded once per pipeline run and treated as
// read-only after that. Lines with fewer than two fields, or a field that
// fails to parse, are ignored.
func LoadZeropoints(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read zeropoints %s", path)
	}
	defer f.Close()

	zp := map[string]float64{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}
		zp[parts[0]] = v
	}
	return zp, errors.Wrapf(scanner.Err(), "read zeropoints %s", path)
}
