package wcs

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseHourAngle parses a sexagesimal hour angle ("17:48:32.4") into
// decimal degrees (15 degrees per hour).
func ParseHourAngle(s string) (float64, error) {
	deg, err := parseSexagesimal(s)
	if err != nil {
		return 0, errors.Wrapf(err, "hour angle %q", s)
	}
	return deg * 15.0, nil
}

// ParseDegrees parses a sexagesimal angle ("-05:23:17.1") into decimal
// degrees. The sign applies to the whole angle, not just the first field.
func ParseDegrees(s string) (float64, error) {
	deg, err := parseSexagesimal(s)
	if err != nil {
		return 0, errors.Wrapf(err, "degrees %q", s)
	}
	return deg, nil
}

func parseSexagesimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, errors.Errorf("want 1-3 colon-separated fields, got %d", len(parts))
	}

	scale := 1.0
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, errors.Errorf("unexpected sign inside field %q", p)
		}
		total += v / scale
		scale *= 60.0
	}

	if neg {
		total = -total
	}
	return total, nil
}
