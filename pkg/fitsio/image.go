package fitsio

import (
	"fmt"
	"math"
)

// An Image is one 2D plane of float64 samples, row-major. It is the
// in-memory form of a FITS data unit, and is also the type passed around
// by the stacking and photometry code (stamps, stacked images, error maps).
type Image struct {
	stride int
	values []float64
}

func NewImage(w, h int) *Image {
	return &Image{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (im *Image) Set(x, y int, v float64) { im.values[im.stride*y+x] = v }
func (im *Image) At(x, y int) float64     { return im.values[im.stride*y+x] }
func (im *Image) Dx() int                 { return im.stride }
func (im *Image) Dy() int                 { return len(im.values) / im.stride }

// Values exposes the backing slice, row-major. Callers that mutate it
// mutate the image.
func (im *Image) Values() []float64 { return im.values }

func (im *Image) Copy() *Image {
	im2 := &Image{stride: im.stride, values: make([]float64, len(im.values))}
	copy(im2.values, im.values)
	return im2
}

// SubImage copies out the w x h block whose minimum corner is (x0,y0).
// The caller is responsible for bounds checking.
func (im *Image) SubImage(x0, y0, w, h int) *Image {
	im2 := NewImage(w, h)
	for y := 0; y < h; y++ {
		src := im.values[(y0+y)*im.stride+x0 : (y0+y)*im.stride+x0+w]
		copy(im2.values[y*w:(y+1)*w], src)
	}
	return im2
}

func (im *Image) MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min

	for i := 0; i < len(im.values); i++ {
		if im.values[i] > max {
			max = im.values[i]
		}
		if im.values[i] < min {
			min = im.values[i]
		}
	}
	return min, max
}

func (im *Image) String() string {
	min, max := im.MinMax()
	return fmt.Sprintf("img[%dx%d, vals{%f,%f}]", im.Dx(), im.Dy(), min, max)
}
