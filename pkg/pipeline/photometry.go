package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"sedstack/pkg/config"
	"sedstack/pkg/fitsio"
	"sedstack/pkg/photometry"
	"sedstack/pkg/plotting"
)

// ErrMissingCenter means photometry_params.galaxy_centers has no entry for
// a stacked file. The file is skipped with a warning.
var ErrMissingCenter = errors.New("no galaxy center configured for file")

// RunPhotometry analyzes every *_NEW.fits file in the output directory and
// writes the combined radial-profile figure. Per-file failures are logged
// and skipped; the figure is produced from whatever succeeded.
func RunPhotometry(cfg config.Config, logger *log.Logger) error {
	files, err := listStacked(cfg.OutputDirectory)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no stacked *_NEW.fits files in %s", cfg.OutputDirectory)
	}

	series := []plotting.ProfileSeries{}
	for _, filename := range files {
		logger.Info("analyzing", "file", filename)
		s, err := analyzeOne(cfg, filename)
		switch {
		case errors.Is(err, ErrMissingCenter):
			logger.Warn("no center found in config, skipping", "file", filename)
		case err != nil:
			logger.Error("photometry failed", "file", filename, "err", err)
		default:
			series = append(series, s)
		}
	}

	if len(series) == 0 {
		return errors.New("no files could be analyzed")
	}

	if err := os.MkdirAll(cfg.PlotDirectory, 0755); err != nil {
		return errors.Wrapf(err, "create plot directory %s", cfg.PlotDirectory)
	}
	plotPath := filepath.Join(cfg.PlotDirectory, cfg.Photometry.OutputPlotFilename)
	if err := plotting.WriteProfiles(series, cfg.Photometry.PlotTitle, plotPath); err != nil {
		return err
	}
	logger.Info("saved profile plot", "path", plotPath)
	return nil
}

func analyzeOne(cfg config.Config, filename string) (plotting.ProfileSeries, error) {
	s := plotting.ProfileSeries{Name: strings.TrimSuffix(filename, "_NEW.fits")}

	center, ok := cfg.Photometry.GalaxyCenters[filename]
	if !ok || len(center) < 2 {
		return s, errors.Wrap(ErrMissingCenter, filename)
	}

	f, err := fitsio.Read(filepath.Join(cfg.OutputDirectory, filename))
	if err != nil {
		return s, err
	}
	sci, ok := f.ByName("SCI")
	if !ok || sci.Image == nil {
		return s, errors.Errorf("%s has no SCI plane", filename)
	}

	scale, err := photometry.PixelScale(f.Primary().Header)
	if err != nil {
		return s, errors.Wrap(err, filename)
	}

	radii, flux, errFlux := photometry.RadialProfile(sci.Image, center[0], center[1])

	fitRange := [2]int{0, len(radii)}
	if len(cfg.Photometry.BkgFitRange) == 2 {
		fitRange = [2]int{cfg.Photometry.BkgFitRange[0], cfg.Photometry.BkgFitRange[1]}
	}
	background := photometry.FitBackground(radii, flux, fitRange)

	// Flux per pixel to surface brightness per square arcsec.
	area := scale * scale
	s.RadiiArcsec = make([]float64, len(radii))
	s.Profile = make([]float64, len(radii))
	s.Err = make([]float64, len(radii))
	s.Background = make([]float64, len(radii))
	for i := range radii {
		s.RadiiArcsec[i] = float64(radii[i]) * scale
		s.Profile[i] = flux[i] / area
		s.Err[i] = errFlux[i] / area
		s.Background[i] = background[i] / area
		if cfg.Photometry.BackgroundReduction {
			s.Profile[i] -= s.Background[i]
		}
	}

	return s, nil
}

func listStacked(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read output directory %s", dir)
	}

	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "_NEW.fits") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
