package image

import (
	"context"
	"fmt"

	"github.com/jkoenig1013/geoio/interface/raster"
	"github.com/jkoenig1013/geoio/internal/geoio"
	"github.com/jkoenig1013/geoio/internal/utils"
	"github.com/jkoenig1013/geoio/internal/utils/affine"
	"github.com/twpayne/go-geom"
)

// ReadOption parameterizes one read operation
type ReadOption func(*readOptions)

type readOptions struct {
	component      int
	bands          []int
	window         *geoio.Window
	buffer         []int
	geom           geoio.GeomInput
	mask           bool
	maskAllTouched bool
	returnLocation bool
}

// Component reads from one raw sub-file of a tiled raster instead of the
// assembled mosaic (1-based)
func Component(i int) ReadOption {
	return func(o *readOptions) { o.component = i }
}

// Bands restricts the read to the given bands (1-based), in the given order
func Bands(bands ...int) ReadOption {
	return func(o *readOptions) { o.bands = bands }
}

// Window reads the given pixel window. Exclusive with Geom.
func Window(x0, y0, sizeX, sizeY int) ReadOption {
	return func(o *readOptions) { o.window = &geoio.Window{X0: x0, Y0: y0, SizeX: sizeX, SizeY: sizeY} }
}

// Buffer expands the window symmetrically by the given number of pixels,
// broadcast to both axes when a single value is given
func Buffer(buffer ...int) ReadOption {
	return func(o *readOptions) { o.buffer = buffer }
}

// Geom reads the pixel envelope of the geometry, expressed in the projected
// coordinates of the raster. Exclusive with Window.
func Geom(g geoio.GeomInput) ReadOption {
	return func(o *readOptions) { o.geom = g }
}

// Mask marks the elements outside the geometry as excluded. Without a
// geometry, every zero-valued element is excluded instead; note that this
// conflates "no data" with legitimate zero-valued pixels.
func Mask() ReadOption {
	return func(o *readOptions) { o.mask = true }
}

// MaskAllTouched includes every pixel touched by the geometry in the mask,
// not only those whose center is covered
func MaskAllTouched() ReadOption {
	return func(o *readOptions) { o.mask = true; o.maskAllTouched = true }
}

// ReturnLocation populates Result.Location
func ReturnLocation() ReadOption {
	return func(o *readOptions) { o.returnLocation = true }
}

// Result is the outcome of one read operation
type Result struct {
	Block *geoio.PixelBlock
	// Location is the pixel window the block covers, in the grid of the read
	// source. Populated when ReturnLocation is requested.
	Location *geoio.Window
}

// Read performs one windowed read
// Raise ValidationError, InvalidBand, InvalidComponent, OverlapError, ReadFailure
func (g *GeoImage) Read(ctx context.Context, opts ...ReadOption) (*Result, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.window != nil && !o.geom.IsEmpty() {
		return nil, geoio.NewValidationError("window and geom are mutually exclusive")
	}

	src, closeSrc, err := g.readSource(ctx, o.component)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	shape := src.Shape()
	bands, err := resolveBands(o.bands, shape.Bands)
	if err != nil {
		return nil, err
	}

	window := geoio.WindowFromShape(shape)
	if o.window != nil {
		window = *o.window
	} else if !o.geom.IsEmpty() {
		if window, err = g.geomWindow(src, o.geom); err != nil {
			return nil, err
		}
	}

	clipped, pads, err := geoio.ResolveWindow(shape, window, o.buffer)
	if err != nil {
		return nil, err
	}

	block := geoio.NewPixelBlock(len(bands), clipped.SizeX, clipped.SizeY, src.DType(bands[0]))
	for i, band := range bands {
		if err := src.ReadBand(ctx, band, clipped, block.BandBytes(i)); err != nil {
			return nil, fmt.Errorf("Read.%w", err)
		}
	}

	if o.mask {
		if o.geom.IsEmpty() {
			block.MaskZeroes()
		} else if err := g.maskGeometry(ctx, src, block, clipped, o.geom, o.maskAllTouched); err != nil {
			return nil, err
		}
	}

	res := &Result{Block: block.Pad(pads)}
	if o.returnLocation {
		res.Location = &geoio.Window{
			X0: clipped.X0 - pads.Left, Y0: clipped.Y0 - pads.Top,
			SizeX: res.Block.SizeX, SizeY: res.Block.SizeY,
		}
	}
	return res, nil
}

// ReadVecExtent reads the pixel envelope covering every feature of the
// vector file at path. Feature geometries are reprojected to the raster's own
// coordinate reference before the envelope is accumulated. The window, geom
// and mask options do not apply, the vector source is the sole selector.
// Raise ValidationError
func (g *GeoImage) ReadVecExtent(ctx context.Context, path string, opts ...ReadOption) (*Result, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.window != nil || !o.geom.IsEmpty() || o.mask {
		return nil, geoio.NewValidationError("window, geom and mask do not apply to a vector-extent read")
	}

	vs, err := g.lib.OpenVector(ctx, path, g.meta.Projection)
	if err != nil {
		return nil, err
	}
	defer vs.Close()

	first := true
	var minX, minY, maxX, maxY float64
	for {
		f, err := vs.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("ReadVecExtent.%w", err)
		}
		if f == nil {
			break
		}
		if f.Geometry == nil {
			continue
		}
		fminX, fminY, fmaxX, fmaxY, err := (geoio.GeomInput{WKB: f.Geometry}).Envelope()
		if err != nil {
			return nil, err
		}
		if first {
			minX, minY, maxX, maxY, first = fminX, fminY, fmaxX, fmaxY, false
		} else {
			minX, minY = min(minX, fminX), min(minY, fminY)
			maxX, maxY = max(maxX, fmaxX), max(maxY, fmaxY)
		}
	}
	if first {
		return nil, geoio.NewValidationError("%s has no feature with a geometry", path)
	}

	envelope := geom.NewPolygonFlat(geom.XY, []float64{minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY}, []int{10})
	return g.Read(ctx, append([]ReadOption{Geom(geoio.GeomInput{Geom: envelope})}, opts...)...)
}

// readSource returns the source of the read: the raster itself, or one of its
// components opened on its own grid
func (g *GeoImage) readSource(ctx context.Context, component int) (raster.Source, func(), error) {
	if component == 0 {
		return g.src, func() {}, nil
	}
	if component < 0 || component > len(g.meta.Components) {
		return nil, nil, geoio.NewInvalidComponent("component %d of %d (1-based)", component, len(g.meta.Components))
	}
	src, err := g.lib.Open(ctx, g.meta.Components[component-1])
	if err != nil {
		return nil, nil, fmt.Errorf("readSource.%w", err)
	}
	return src, func() { src.Close() }, nil
}

func resolveBands(bands []int, available int) ([]int, error) {
	if len(bands) == 0 {
		bands = make([]int, available)
		for i := range bands {
			bands[i] = i + 1
		}
		return bands, nil
	}
	for _, b := range bands {
		if b < 1 || b > available {
			return nil, geoio.NewInvalidBand("band %d of %d (1-based)", b, available)
		}
	}
	return bands, nil
}

// geomWindow converts the projected envelope of the geometry to a pixel
// window on the source's own grid
func (g *GeoImage) geomWindow(src raster.Source, gi geoio.GeomInput) (geoio.Window, error) {
	minX, minY, maxX, maxY, err := gi.Envelope()
	if err != nil {
		return geoio.Window{}, err
	}
	projToPix := g.projToPix
	if src != g.src {
		gt, err := src.GeoTransform()
		if err != nil {
			return geoio.Window{}, geoio.NewReadFailure(err, "component has no geotransform")
		}
		pixToProj := affine.FromGeoTransform(gt)
		if !pixToProj.IsInvertible() {
			return geoio.Window{}, geoio.NewReadFailure(nil, "component has a degenerate geotransform")
		}
		projToPix = pixToProj.Inverse()
	}

	xs, ys := projToPix.TransformBatch([]float64{minX, minX, maxX, maxX}, []float64{minY, maxY, minY, maxY})
	x0 := utils.FloorI(utils.MinElemF(xs))
	y0 := utils.FloorI(utils.MinElemF(ys))
	x1 := utils.CeilI(utils.MaxElemF(xs))
	y1 := utils.CeilI(utils.MaxElemF(ys))
	return geoio.Window{X0: x0, Y0: y0, SizeX: x1 - x0, SizeY: y1 - y0}, nil
}

// maskGeometry burns the geometry into a mask aligned to the read window and
// applies it. The mask origin is recomputed from the window's top-left pixel
// so that sub-pixel alignment survives geometry reprojection.
func (g *GeoImage) maskGeometry(ctx context.Context, src raster.Source, block *geoio.PixelBlock, window geoio.Window, gi geoio.GeomInput, allTouched bool) error {
	wkbGeom, err := gi.ToWKB()
	if err != nil {
		return err
	}

	gt, err := src.GeoTransform()
	if err != nil {
		return geoio.NewReadFailure(err, "cannot georeference the mask")
	}
	pixToProj := affine.FromGeoTransform(gt)
	// projected origin of the window's top-left pixel
	ox, oy := pixToProj.Transform(float64(window.X0), float64(window.Y0))
	maskGT := [6]float64{ox, gt[1], gt[2], oy, gt[4], gt[5]}

	occupancy, err := g.lib.RasterizeMask(ctx, wkbGeom, maskGT, window.SizeX, window.SizeY, allTouched)
	if err != nil {
		return fmt.Errorf("maskGeometry.%w", err)
	}
	excluded := make([]bool, len(occupancy))
	for i, v := range occupancy {
		excluded[i] = v == 0
	}
	block.ApplyMask2D(excluded)
	return nil
}
