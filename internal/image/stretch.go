package image

import (
	"context"
	"fmt"

	"github.com/jkoenig1013/geoio/internal/geoio"
)

const stretchBuckets = 1000

// StretchOption parameterizes a stretch-value estimation
type StretchOption func(*stretchOptions)

type stretchOptions struct {
	bands       []int
	low, high   float64
	approximate bool
}

// StretchBands restricts the estimation to the given bands (1-based)
func StretchBands(bands ...int) StretchOption {
	return func(o *stretchOptions) { o.bands = bands }
}

// Percentiles sets the cumulative-histogram percentiles of the stretch,
// as fractions of 1. Defaults to 0.02 and 0.98.
func Percentiles(low, high float64) StretchOption {
	return func(o *stretchOptions) { o.low, o.high = low, high }
}

// Approximate lets the estimation work on a subset of the full resolution data
func Approximate() StretchOption {
	return func(o *stretchOptions) { o.approximate = true }
}

// StretchValues estimates a (low, high) pixel-value pair for display
// contrast, from the cumulative histogram of the raster. When several bands
// are requested, the pair of the last one is returned.
// Raise ValidationError, InvalidBand, ReadFailure
func (g *GeoImage) StretchValues(ctx context.Context, opts ...StretchOption) (float64, float64, error) {
	o := stretchOptions{low: 0.02, high: 0.98}
	for _, opt := range opts {
		opt(&o)
	}
	if o.low < 0 || o.high > 1 || o.low >= o.high {
		return 0, 0, geoio.NewValidationError("percentiles must satisfy 0 <= low < high <= 1, got (%g, %g)", o.low, o.high)
	}
	bands, err := resolveBands(o.bands, g.meta.Shape.Bands)
	if err != nil {
		return 0, 0, err
	}

	var low, high float64
	for _, band := range bands {
		if low, high, err = g.stretchBand(ctx, band, o); err != nil {
			return 0, 0, err
		}
	}
	return low, high, nil
}

func (g *GeoImage) stretchBand(ctx context.Context, band int, o stretchOptions) (float64, float64, error) {
	min, max, err := g.src.MinMax(ctx, band, o.approximate)
	if err != nil {
		return 0, 0, fmt.Errorf("StretchValues.%w", err)
	}
	if min == max {
		return min, max, nil
	}

	counts, err := g.src.Histogram(ctx, band, min, max, stretchBuckets, o.approximate)
	if err != nil {
		return 0, 0, fmt.Errorf("StretchValues.%w", err)
	}

	var total uint64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return min, max, nil
	}

	width := (max - min) / float64(len(counts))
	low, high := min, max
	lowFound := false
	var cum uint64
	for i, c := range counts {
		cum += c
		fraction := float64(cum) / float64(total)
		if !lowFound && fraction >= o.low {
			low = min + width*float64(i)
			lowFound = true
		}
		if fraction >= o.high {
			high = min + width*float64(i+1)
			break
		}
	}
	return low, high, nil
}
