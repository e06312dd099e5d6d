// Package plotting renders the pipeline's outputs: the tiled
// radial-profile figure consumed at the end of the photometry pass, and
// grayscale quicklook images of each stacked stamp.
package plotting

import (
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// A ProfileSeries is one stacked file's radial profile in
// surface-brightness units, plus the fitted background evaluated at the
// same radii. The four slices are parallel.
type ProfileSeries struct {
	Name        string
	RadiiArcsec []float64
	Profile     []float64
	Err         []float64
	Background  []float64
}

// yerrPoints adapts a series to the plotter interfaces needed for
// symmetric Y error bars.
type yerrPoints struct {
	plotter.XYs
	errs []float64
}

func (p yerrPoints) YError(i int) (float64, float64) { return p.errs[i], p.errs[i] }

// Tile geometry: at most profileCols panels per row, each panel a fixed
// size, with a strip across the top reserved for the figure title.
const (
	profileCols = 4
	panelWidth  = 5 * vg.Inch
	panelHeight = 3.5 * vg.Inch
	titleStrip  = 0.4 * vg.Inch
)

// WriteProfiles draws one panel per series - solid line with points and
// error bars for the data, a dashed line for the background model - tiled
// left to right, top to bottom on a shared PNG canvas. Panels are titled
// by series name; the shared axis labels sit on the first column and the
// bottom row, and trailing grid positions with no series are left blank.
func WriteProfiles(series []ProfileSeries, title, path string) error {
	if len(series) == 0 {
		return errors.New("no profiles to plot")
	}

	cols := profileCols
	if len(series) < cols {
		cols = len(series)
	}
	rows := (len(series) + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}

	dataCol := colorful.Hsv(220, 0.85, 0.75)
	bkgCol := colorful.Hsv(0, 0.85, 0.8)

	for i, s := range series {
		row, col := i/cols, i%cols

		p := plot.New()
		p.Title.Text = s.Name
		if col == 0 {
			p.Y.Label.Text = "Surface brightness (flux/arcsec²)"
		}
		if row == rows-1 {
			p.X.Label.Text = "Radius (arcsec)"
		}

		pts := make(plotter.XYs, len(s.RadiiArcsec))
		bgPts := make(plotter.XYs, len(s.RadiiArcsec))
		for j := range s.RadiiArcsec {
			pts[j] = plotter.XY{X: s.RadiiArcsec[j], Y: s.Profile[j]}
			bgPts[j] = plotter.XY{X: s.RadiiArcsec[j], Y: s.Background[j]}
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return errors.Wrapf(err, "plot series %s", s.Name)
		}
		line.Color = dataCol
		points.Color = dataCol
		points.Radius = vg.Points(1.5)

		bars, err := plotter.NewYErrorBars(yerrPoints{XYs: pts, errs: s.Err})
		if err != nil {
			return errors.Wrapf(err, "plot series %s error bars", s.Name)
		}
		bars.LineStyle.Color = dataCol

		bgLine, err := plotter.NewLine(bgPts)
		if err != nil {
			return errors.Wrapf(err, "plot series %s background", s.Name)
		}
		bgLine.Color = bkgCol
		bgLine.Width = vg.Points(1)
		bgLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		p.Add(line, points, bars, bgLine)
		if i == 0 {
			p.Legend.Add("Data", line)
			p.Legend.Add("Bkg fit", bgLine)
			p.Legend.Top = true
		}

		plots[row][col] = p
	}

	img := vgimg.New(vg.Length(cols)*panelWidth, vg.Length(rows)*panelHeight+titleStrip)
	dc := draw.Crop(draw.New(img), 0, 0, 0, -titleStrip)

	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 2, PadY: vg.Millimeter * 2,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	gc := gg.NewContextForImage(img.Image())
	gc.SetRGB(0, 0, 0)
	gc.DrawStringAnchored(title, float64(gc.Width())/2, 16, 0.5, 0.5)
	if err := gc.SavePNG(path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
