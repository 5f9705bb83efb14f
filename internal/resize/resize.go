// Package resize scales decoded frames with the filters of
// github.com/disintegration/imaging.
package resize

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/smazurov/imgtowebm/internal/types"
)

// Filter maps a scaling algorithm to its imaging resample filter.
func Filter(alg types.ScaleAlgorithm) imaging.ResampleFilter {
	switch alg {
	case types.ScaleTriangle:
		return imaging.Linear
	case types.ScaleCatmullRom:
		return imaging.CatmullRom
	case types.ScaleGaussian:
		return imaging.Gaussian
	case types.ScaleLanczos3:
		return imaging.Lanczos
	default:
		return imaging.NearestNeighbor
	}
}

// FitDimensions returns the largest size with the aspect ratio of
// srcW x srcH that fits inside maxW x maxH. Both axes are rounded and kept
// at least 1; images smaller than the box are scaled up.
func FitDimensions(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return maxW, maxH
	}
	ratio := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := int(math.Round(float64(srcW) * ratio))
	h := int(math.Round(float64(srcH) * ratio))
	return max(w, 1), max(h, 1)
}

// Imaging implements the pipeline Resampler.
type Imaging struct{}

// Fit scales img to fit inside width x height keeping its aspect ratio.
func (Imaging) Fit(img image.Image, width, height int, alg types.ScaleAlgorithm) image.Image {
	b := img.Bounds()
	w, h := FitDimensions(b.Dx(), b.Dy(), width, height)
	return imaging.Resize(img, w, h, Filter(alg))
}

// Stretch scales img to exactly width x height.
func (Imaging) Stretch(img image.Image, width, height int, alg types.ScaleAlgorithm) image.Image {
	return imaging.Resize(img, width, height, Filter(alg))
}
