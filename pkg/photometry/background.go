package photometry

import (
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/optimize"
)

// bkgMaxIterations caps the least-squares solver so a pathological profile
// cannot hang the photometry pass.
const bkgMaxIterations = 200

// FitBackground fits the sky model f(r) = a + b*r^2 to the profile over
// the window fitRange and evaluates the fitted model at every input
// radius. The model deliberately has no linear term: an azimuthally
// symmetric background is flat at the center.
//
// fitRange uses slice semantics on the radii/profile arrays, including a
// negative end index counting back from the end. If the fit fails to
// converge the function logs a warning and returns an all-zero background
// of the same length as radii - it never propagates the solver error.
func FitBackground(radii []int, profile []float64, fitRange [2]int) []float64 {
	bkg := make([]float64, len(radii))

	start, end := sliceBounds(fitRange, len(radii))
	if end-start < 2 {
		log.Warn("background fit window too small, returning zero background",
			"start", fitRange[0], "end", fitRange[1])
		return bkg
	}

	xdata := make([]float64, 0, end-start)
	ydata := make([]float64, 0, end-start)
	for i := start; i < end; i++ {
		xdata = append(xdata, float64(radii[i]))
		ydata = append(ydata, profile[i])
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			ssr := 0.0
			for i, x := range xdata {
				e := p[0] + p[1]*x*x - ydata[i]
				ssr += e * e
			}
			return ssr
		},
		Grad: func(grad, p []float64) {
			grad[0], grad[1] = 0, 0
			for i, x := range xdata {
				e := p[0] + p[1]*x*x - ydata[i]
				grad[0] += 2 * e
				grad[1] += 2 * e * x * x
			}
		},
	}

	settings := &optimize.Settings{MajorIterations: bkgMaxIterations}
	result, err := optimize.Minimize(problem, []float64{0, 0}, settings, &optimize.BFGS{})
	if err == nil && result != nil {
		err = result.Status.Err()
	}
	if err != nil || result == nil {
		log.Warn("background fit failed, returning zero background", "err", err)
		return bkg
	}

	a, b := result.X[0], result.X[1]
	for i, r := range radii {
		x := float64(r)
		bkg[i] = a + b*x*x
	}
	return bkg
}

// sliceBounds resolves a [start, end] pair with Python slice semantics
// against an array of length n.
func sliceBounds(fitRange [2]int, n int) (int, int) {
	start, end := fitRange[0], fitRange[1]
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	return start, end
}
