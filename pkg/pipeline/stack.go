// Package pipeline runs the two batch passes: stacking each configured
// wide-field image into a high-signal stamp, and deriving
// surface-brightness radial profiles from the stacked outputs.
//
// Per-file failures are isolated: a file that cannot be processed is
// reported and skipped, and the batch moves on to the next one.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/skypies/util/histogram"

	"sedstack/pkg/config"
	"sedstack/pkg/fitsio"
	"sedstack/pkg/plotting"
	"sedstack/pkg/stacking"
	"sedstack/pkg/wcs"
)

// RunStacking stacks every file in stacking_params.files_to_stack. It
// returns an error only when nothing could be processed at all; individual
// file failures are logged and skipped.
func RunStacking(cfg config.Config, logger *log.Logger) error {
	if err := os.MkdirAll(cfg.OutputDirectory, 0755); err != nil {
		return errors.Wrapf(err, "create output directory %s", cfg.OutputDirectory)
	}

	zeropoints, err := stacking.LoadZeropoints(filepath.Join(cfg.DataDirectory, cfg.ZeropointsFile))
	if err != nil {
		return err
	}

	regionPath := filepath.Join(cfg.DataDirectory, cfg.RegionFile)

	failures := 0
	for _, filename := range cfg.Stacking.FilesToStack {
		logger.Info("processing", "file", filename)
		if err := stackOne(cfg, filename, regionPath, zeropoints, logger); err != nil {
			logger.Error("stacking failed", "file", filename, "err", err)
			failures++
		}
	}

	if n := len(cfg.Stacking.FilesToStack); n > 0 && failures == n {
		return errors.New("every file failed to stack")
	}
	return nil
}

func stackOne(cfg config.Config, filename, regionPath string, zeropoints map[string]float64, logger *log.Logger) error {
	f, err := fitsio.Read(filepath.Join(cfg.DataDirectory, filename))
	if err != nil {
		return err
	}
	prim := f.Primary()
	if prim.Image == nil {
		return errors.Errorf("%s has no image data in its primary HDU", filename)
	}

	tr, err := wcs.FromHeader(prim.Header)
	if err != nil {
		return errors.Wrapf(err, "%s WCS", filename)
	}

	coords, err := stacking.ResolveCatalogFile(tr, regionPath)
	if err != nil {
		return err
	}

	stamps := stacking.ExtractStamps(prim.Image, coords, cfg.Stacking.StampSize)
	logger.Info("extracted stamps", "file", filename,
		"valid", len(stamps), "catalog", len(coords))
	logCentralFlux(stamps, cfg.Stacking.StampSize, logger)

	stacked, errMap, err := stacking.StackStamps(stamps, cfg.Stacking.TrimFraction)
	if err != nil {
		return errors.Wrapf(err, "stack %s", filename)
	}

	zeropoint, ok := zeropoints[filename]
	if !ok {
		logger.Warn("no zeropoint for file, using 0.0", "file", filename)
	}

	outPath := filepath.Join(cfg.OutputDirectory, outputName(filename))
	if err := stacking.SaveStacked(outPath, stacked, errMap, prim.Header, zeropoint); err != nil {
		return err
	}
	logger.Info("saved stacked image", "path", outPath)

	qlPath := strings.TrimSuffix(outPath, ".fits") + "_quicklook.png"
	if err := plotting.WriteQuicklook(stacked, filename, qlPath); err != nil {
		logger.Warn("quicklook failed", "file", filename, "err", err)
	}

	return nil
}

// logCentralFlux reports the distribution of stamp central-pixel fluxes at
// debug level; a long high tail usually means cosmic rays or bad catalog
// positions leaked into the stack.
func logCentralFlux(stamps []*fitsio.Image, size int, logger *log.Logger) {
	hist := histogram.Histogram{NumBuckets: 32, ValMin: 0, ValMax: 1024}
	c := size / 2
	for _, st := range stamps {
		v := int(st.At(c, c))
		if v < 0 {
			v = 0
		} else if v > 1023 {
			v = 1023
		}
		hist.Add(histogram.ScalarVal(v))
	}
	logger.Debug("stamp central flux", "hist", fmt.Sprintf("%v", hist))
}

// outputName maps an input filename to its stacked counterpart,
// e.g. "field_g.fits" -> "field_g_NEW.fits".
func outputName(filename string) string {
	return strings.TrimSuffix(filename, ".fits") + "_NEW.fits"
}
