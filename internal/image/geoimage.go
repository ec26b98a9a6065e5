package image

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/jkoenig1013/geoio/internal/log"
	"github.com/jkoenig1013/geoio/internal/utils"
	"github.com/jkoenig1013/geoio/internal/utils/affine"
)

// GeoImage is a coordinate-aware handle on a raster file. It keeps one
// read-only source open for its whole lifetime; Close releases it. The handle
// is not safe for concurrent use.
type GeoImage struct {
	lib  raster.Library
	src  raster.Source
	meta Meta

	pixToProj *affine.Affine
	projToPix *affine.Affine

	derivedDir string
}

// Meta is the descriptive summary of an open raster
type Meta struct {
	Path         string
	Driver       string
	Shape        geoio.Shape
	DTypes       []geoio.DType
	NoData       []float64
	HasNoData    []bool
	GeoTransform [6]float64
	Projection   string
	Resolution   [2]float64
	// Extent is (minX, minY, maxX, maxY) in projected coordinates
	Extent [4]float64
	// Files lists every file backing the raster, the dataset file first
	Files []string
	// Components lists the raw sub-files of a tiled/mosaicked raster
	Components []string
}

type Option func(*GeoImage)

// DerivedDir sets the directory where derived outputs are written.
// It defaults to the directory of the raster itself.
func DerivedDir(dir string) Option {
	return func(g *GeoImage) { g.derivedDir = dir }
}

// New opens the raster at path
func New(ctx context.Context, lib raster.Library, path string, opts ...Option) (*GeoImage, error) {
	src, err := lib.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("New.%w", err)
	}

	g := &GeoImage{lib: lib, src: src}
	for _, opt := range opts {
		opt(g)
	}
	if g.derivedDir != "" {
		info, err := os.Stat(g.derivedDir)
		if err != nil || !info.IsDir() {
			src.Close()
			return nil, geoio.NewConfigurationError("derived dir %s is not a directory", g.derivedDir)
		}
		if info.Mode().Perm()&0o222 == 0 {
			src.Close()
			return nil, geoio.NewConfigurationError("derived dir %s is not writable", g.derivedDir)
		}
	}

	gt, err := src.GeoTransform()
	if err != nil {
		src.Close()
		return nil, geoio.NewConfigurationError("%s has no geotransform: %v", path, err)
	}
	g.pixToProj = affine.FromGeoTransform(gt)
	if !g.pixToProj.IsInvertible() {
		src.Close()
		return nil, geoio.NewConfigurationError("%s has a degenerate geotransform", path)
	}
	g.projToPix = g.pixToProj.Inverse()

	shape := src.Shape()
	files := src.Files()
	g.meta = Meta{
		Path:         path,
		Driver:       src.DriverName(),
		Shape:        shape,
		DTypes:       make([]geoio.DType, shape.Bands),
		NoData:       make([]float64, shape.Bands),
		HasNoData:    make([]bool, shape.Bands),
		GeoTransform: gt,
		Projection:   src.Projection(),
		Resolution:   [2]float64{math.Abs(gt[1]), math.Abs(gt[5])},
		Files:        files,
	}
	if len(files) > 1 {
		g.meta.Components = files[1:]
	}
	for b := 1; b <= shape.Bands; b++ {
		g.meta.DTypes[b-1] = src.DType(b)
		g.meta.NoData[b-1], g.meta.HasNoData[b-1] = src.NoData(b)
	}

	// projected corners of the pixel grid
	xs, ys := g.pixToProj.TransformBatch(
		[]float64{0, float64(shape.SizeX)},
		[]float64{0, float64(shape.SizeY)})
	g.meta.Extent = [4]float64{
		min(xs[0], xs[1]), min(ys[0], ys[1]),
		max(xs[0], xs[1]), max(ys[0], ys[1]),
	}

	log.Logger(log.With(ctx, "path", path)).Sugar().Debugf("opened %s raster %dx%dx%d", g.meta.Driver, shape.Bands, shape.SizeX, shape.SizeY)
	return g, nil
}

// Meta returns the descriptive summary of the raster
func (g *GeoImage) Meta() Meta {
	return g.meta
}

// Close releases the underlying raster handle
func (g *GeoImage) Close() error {
	if g.src == nil {
		return nil
	}
	err := g.src.Close()
	g.src = nil
	return err
}

// String formats a human-readable summary of the raster
func (g *GeoImage) String() string {
	m := g.meta
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", m.Path, m.Driver)
	fmt.Fprintf(&sb, "  shape: %d band(s), %d x %d\n", m.Shape.Bands, m.Shape.SizeX, m.Shape.SizeY)
	for b := 0; b < m.Shape.Bands; b++ {
		if m.HasNoData[b] {
			fmt.Fprintf(&sb, "  band %d: %s, no-data %g\n", b+1, m.DTypes[b], m.NoData[b])
		} else {
			fmt.Fprintf(&sb, "  band %d: %s\n", b+1, m.DTypes[b])
		}
	}
	fmt.Fprintf(&sb, "  resolution: %s x %s\n", utils.F64ToS(m.Resolution[0]), utils.F64ToS(m.Resolution[1]))
	fmt.Fprintf(&sb, "  extent: (%g, %g) - (%g, %g)\n", m.Extent[0], m.Extent[1], m.Extent[2], m.Extent[3])
	if len(m.Components) > 0 {
		fmt.Fprintf(&sb, "  components: %d\n", len(m.Components))
	}
	return sb.String()
}

// RasterToProj converts pixel coordinates to projected coordinates.
// Raise ShapeMismatch
func (g *GeoImage) RasterToProj(xs, ys []float64) ([]float64, []float64, error) {
	if len(xs) != len(ys) {
		return nil, nil, geoio.NewShapeMismatch("%d x coordinates for %d y coordinates", len(xs), len(ys))
	}
	px, py := g.pixToProj.TransformBatch(xs, ys)
	return px, py, nil
}

// ProjToRaster converts projected coordinates to pixel coordinates.
// Raise ShapeMismatch
func (g *GeoImage) ProjToRaster(xs, ys []float64) ([]float64, []float64, error) {
	if len(xs) != len(ys) {
		return nil, nil, geoio.NewShapeMismatch("%d x coordinates for %d y coordinates", len(xs), len(ys))
	}
	px, py := g.projToPix.TransformBatch(xs, ys)
	return px, py, nil
}
