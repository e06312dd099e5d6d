// Package config loads the pipeline's YAML configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

/* Example config file ...

data_directory: "data/"
output_directory: "data/output/"
plot_directory: "data/plots/"
region_file: "galaxies.reg"
zeropoints_file: "zeropoints.txt"

stacking_params:
  files_to_stack:
    - "field_g.fits"
    - "field_r.fits"
  stamp_size: 51
  trim_fraction: 0.1

photometry_params:
  background_reduction: true
  galaxy_centers:
    field_g_NEW.fits: [25.0, 25.0]
    field_r_NEW.fits: [25.0, 25.0]
  bkg_fit_range: [10, -5]
  plot_title: "Stacked radial profiles"
  output_plot_filename: "profiles.png"

*/

type StackingParams struct {
	FilesToStack []string `yaml:"files_to_stack"`
	StampSize    int      `yaml:"stamp_size"`
	TrimFraction float64  `yaml:"trim_fraction"`
}

type PhotometryParams struct {
	BackgroundReduction bool                 `yaml:"background_reduction"`
	GalaxyCenters       map[string][]float64 `yaml:"galaxy_centers"`
	BkgFitRange         []int                `yaml:"bkg_fit_range"`
	PlotTitle           string               `yaml:"plot_title"`
	OutputPlotFilename  string               `yaml:"output_plot_filename"`
}

type Config struct {
	DataDirectory   string `yaml:"data_directory"`
	OutputDirectory string `yaml:"output_directory"`
	PlotDirectory   string `yaml:"plot_directory"`
	RegionFile      string `yaml:"region_file"`
	ZeropointsFile  string `yaml:"zeropoints_file"`

	Stacking   StackingParams   `yaml:"stacking_params"`
	Photometry PhotometryParams `yaml:"photometry_params"`
}

func Load(path string) (Config, error) {
	c := Config{}

	contents, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, errors.Wrapf(err, "parse config %s", path)
	}

	return c, c.Finalize()
}

// Finalize fills defaults and sanity-checks the values the pipeline
// depends on.
func (c *Config) Finalize() error {
	switch {
	case c.DataDirectory == "":
		return errors.New("config missing data_directory")
	case c.OutputDirectory == "":
		return errors.New("config missing output_directory")
	case c.RegionFile == "":
		return errors.New("config missing region_file")
	case c.ZeropointsFile == "":
		return errors.New("config missing zeropoints_file")
	}

	if c.PlotDirectory == "" {
		c.PlotDirectory = c.OutputDirectory
	}

	if c.Stacking.StampSize <= 0 {
		return errors.Errorf("stamp_size must be a positive integer, got %d", c.Stacking.StampSize)
	}
	if c.Stacking.TrimFraction < 0 || c.Stacking.TrimFraction >= 0.5 {
		return errors.Errorf("trim_fraction %g outside [0, 0.5)", c.Stacking.TrimFraction)
	}

	if n := len(c.Photometry.BkgFitRange); n != 0 && n != 2 {
		return errors.Errorf("bkg_fit_range wants [start, end], got %d values", n)
	}

	return nil
}
